// Package payment implements the payment decision domain: the rule chain,
// the per-request agent that sequences collaborator calls with bounded
// retries, and the coordinating service that enforces rate limits and
// idempotent replay.
package payment

// Decision is the terminal classification of a payment request.
type Decision string

const (
	DecisionAllow  Decision = "allow"
	DecisionReview Decision = "review"
	DecisionBlock  Decision = "block"
)

// IsValid checks if the decision is one of the supported enum values.
func (d Decision) IsValid() bool {
	switch d {
	case DecisionAllow, DecisionReview, DecisionBlock:
		return true
	}
	return false
}

// Reason tags explaining a review or block outcome. insufficient_funds is
// exclusive: it short-circuits rule evaluation and never combines with
// other reasons.
const (
	ReasonInsufficientFunds          = "insufficient_funds"
	ReasonRecentDisputes             = "recent_disputes"
	ReasonAmountAboveDailyThreshold  = "amount_above_daily_threshold"
	ReasonUnrecognizedDevice         = "unrecognized_device"
	ReasonInsufficientFundsOnReserve = "insufficient_funds_on_reserve"
	ReasonInternalErrorBalanceCheck  = "internal_error_balance_check"
	ReasonInternalErrorRiskCheck     = "internal_error_risk_check"
)

// RiskSignals are the per-request risk inputs fetched from the signal source.
type RiskSignals struct {
	RecentDisputes int  `json:"recent_disputes"`
	DeviceChange   bool `json:"device_change"`
}

// TraceStep is one ordered record of an orchestration action taken while
// processing a request. Steps are append-only and never mutated.
type TraceStep struct {
	Step   string `json:"step"`
	Detail string `json:"detail"`
}

// Outcome is the full decision payload returned to the caller and cached
// under the request's idempotency key.
type Outcome struct {
	Decision   Decision    `json:"decision"`
	Reasons    []string    `json:"reasons"`
	AgentTrace []TraceStep `json:"agentTrace"`
	RequestID  string      `json:"requestId"`
}

// DecideRequest is the domain-level input for one payment decision.
type DecideRequest struct {
	CustomerID     string
	Amount         float64
	Currency       string
	PayeeID        string
	IdempotencyKey string
}
