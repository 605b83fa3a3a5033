package handler

import (
	"strings"

	dErrors "payguard/pkg/domain-errors"
)

// DecideRequest is the HTTP request body for POST /payments/decide.
type DecideRequest struct {
	CustomerID string  `json:"customerId"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	PayeeID    string  `json:"payeeId"`
}

// Validate validates and normalizes the request. Implements the Validatable
// interface for httputil.DecodeAndPrepare.
func (r *DecideRequest) Validate() error {
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	if r.CustomerID == "" {
		return dErrors.New(dErrors.CodeValidation, "customerId is required")
	}
	if r.Amount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "amount must be greater than zero")
	}
	r.Currency = strings.TrimSpace(r.Currency)
	if r.Currency == "" {
		return dErrors.New(dErrors.CodeValidation, "currency is required")
	}
	r.PayeeID = strings.TrimSpace(r.PayeeID)
	if r.PayeeID == "" {
		return dErrors.New(dErrors.CodeValidation, "payeeId is required")
	}
	return nil
}
