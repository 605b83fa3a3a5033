package payment

import (
	"errors"
	"fmt"
)

// ToolExhaustedError reports that a collaborator call failed on every retry
// attempt. Balance and risk lookups downgrade this to a safe block outcome;
// reservation exhaustion propagates it to the caller.
type ToolExhaustedError struct {
	Tool     string
	Attempts int
	Err      error
}

func (e *ToolExhaustedError) Error() string {
	return fmt.Sprintf("tool %s exhausted after %d attempts: %v", e.Tool, e.Attempts, e.Err)
}

func (e *ToolExhaustedError) Unwrap() error {
	return e.Err
}

// ErrCaseCreation marks an outcome whose follow-up case could not be created.
// The decision itself is final; the handler decides how to surface the
// failure without discarding the outcome.
var ErrCaseCreation = errors.New("case creation failed")
