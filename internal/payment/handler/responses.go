package handler

import "payguard/internal/payment"

// DecideResponse is the HTTP response for POST /payments/decide.
type DecideResponse struct {
	Decision   string              `json:"decision"`
	Reasons    []string            `json:"reasons"`
	AgentTrace []payment.TraceStep `json:"agentTrace"`
	RequestID  string              `json:"requestId"`
}

// FromOutcome converts a domain outcome to an HTTP response.
func FromOutcome(outcome *payment.Outcome) *DecideResponse {
	return &DecideResponse{
		Decision:   string(outcome.Decision),
		Reasons:    outcome.Reasons,
		AgentTrace: outcome.AgentTrace,
		RequestID:  outcome.RequestID,
	}
}
