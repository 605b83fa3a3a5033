package payment

import (
	"context"
	"fmt"
	"log/slog"

	"payguard/pkg/platform/privacy"
)

// maxToolRetries is the number of additional attempts after the first
// failure. Retries are immediate; collaborator failures are assumed
// transient and independent.
const maxToolRetries = 2

// Collaborator tool names as they appear in trace steps.
const (
	toolGetBalance     = "getBalance"
	toolGetRiskSignals = "getRiskSignals"
	toolReserveBalance = "reserveBalance"
	toolCreateCase     = "createCase"
)

// agent drives one payment decision: it sequences collaborator calls with
// bounded retries, evaluates the rule chain, and records an append-only
// trace of everything it did. An agent lives for exactly one request and
// owns nothing shared.
type agent struct {
	requestID string
	trace     []TraceStep

	signals  SignalSource
	reserver BalanceReserver
	cases    CaseCreator
	logger   *slog.Logger
}

func newAgent(requestID string, signals SignalSource, reserver BalanceReserver, cases CaseCreator, logger *slog.Logger) *agent {
	return &agent{
		requestID: requestID,
		signals:   signals,
		reserver:  reserver,
		cases:     cases,
		logger:    logger,
	}
}

func (a *agent) addTrace(step, detail string) {
	a.trace = append(a.trace, TraceStep{Step: step, Detail: detail})
}

// invokeTool runs fn with up to maxToolRetries immediate retries. Success
// appends a tool:<name> trace step with the result; exhaustion appends a
// failure step and returns a *ToolExhaustedError carrying the last error.
func invokeTool[T any](ctx context.Context, a *agent, name string, fn func(context.Context) (T, error)) (T, error) {
	var lastErr error
	for attempt := 1; attempt <= maxToolRetries+1; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			a.addTrace("tool:"+name, fmt.Sprintf("success: %v", result))
			return result, nil
		}
		a.logger.ErrorContext(ctx, "tool call failed",
			"request_id", a.requestID,
			"tool", name,
			"attempt", attempt,
			"error", err,
		)
		lastErr = err
	}

	a.addTrace("tool:"+name, fmt.Sprintf("failed after %d attempts", maxToolRetries+1))
	var zero T
	return zero, &ToolExhaustedError{Tool: name, Attempts: maxToolRetries + 1, Err: lastErr}
}

// run executes the decision flow for one payment. It returns a non-nil error
// only for the two fatal conditions: reservation exhaustion (no outcome) and
// case-creation exhaustion (outcome still returned, wrapped ErrCaseCreation).
// Exhausted balance and risk lookups are downgraded to block outcomes with an
// internal-error reason, trace preserved.
func (a *agent) run(ctx context.Context, customerID string, amount float64) (*Outcome, error) {
	a.addTrace("plan", "Check balance, assess risk, and execute decision.")

	balance, err := invokeTool(ctx, a, toolGetBalance, func(ctx context.Context) (float64, error) {
		return a.signals.Balance(ctx, customerID)
	})
	if err != nil {
		return a.outcome(DecisionBlock, []string{ReasonInternalErrorBalanceCheck}), nil
	}

	signals, err := invokeTool(ctx, a, toolGetRiskSignals, func(ctx context.Context) (RiskSignals, error) {
		return a.signals.RiskSignals(ctx, customerID, amount)
	})
	if err != nil {
		return a.outcome(DecisionBlock, []string{ReasonInternalErrorRiskCheck}), nil
	}

	decision, reasons := EvaluateRules(amount, balance, signals)
	a.addTrace("decision", fmt.Sprintf("Determined decision: %s with reasons: %v", decision, reasons))

	switch decision {
	case DecisionAllow:
		reserved, err := invokeTool(ctx, a, toolReserveBalance, func(ctx context.Context) (bool, error) {
			return a.reserver.Reserve(ctx, customerID, amount)
		})
		if err != nil {
			// Reservation exhaustion is fatal: the ledger state is unknown,
			// so no outcome is produced and nothing gets cached.
			return nil, err
		}
		if !reserved {
			return a.outcome(DecisionBlock, []string{ReasonInsufficientFundsOnReserve}), nil
		}

	case DecisionReview, DecisionBlock:
		_, err := invokeTool(ctx, a, toolCreateCase, func(ctx context.Context) (string, error) {
			return a.cases.CreateCase(ctx, customerID, reasons)
		})
		if err != nil {
			a.logger.WarnContext(ctx, "case creation exhausted, returning decided outcome",
				"request_id", a.requestID,
				"customer_id", privacy.RedactCustomerID(customerID),
				"decision", decision,
			)
			return a.outcome(decision, reasons), fmt.Errorf("%w: %w", ErrCaseCreation, err)
		}
	}

	return a.outcome(decision, reasons), nil
}

func (a *agent) outcome(decision Decision, reasons []string) *Outcome {
	return &Outcome{
		Decision:   decision,
		Reasons:    reasons,
		AgentTrace: a.trace,
		RequestID:  a.requestID,
	}
}
