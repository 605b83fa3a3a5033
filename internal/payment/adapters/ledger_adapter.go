// Package adapters bridges in-process collaborators to the payment service's
// interfaces.
package adapters

import (
	"context"

	"payguard/internal/ledger"
)

// LedgerReserver adapts the ledger to payment.BalanceReserver. The in-process
// ledger cannot fail transiently, so the error is always nil; a remote ledger
// implementation would surface I/O errors here.
type LedgerReserver struct {
	ledger *ledger.Ledger
}

// NewLedgerReserver wraps a ledger.
func NewLedgerReserver(l *ledger.Ledger) *LedgerReserver {
	return &LedgerReserver{ledger: l}
}

// Reserve attempts an atomic balance reservation.
func (r *LedgerReserver) Reserve(_ context.Context, customerID string, amount float64) (bool, error) {
	return r.ledger.Reserve(customerID, amount), nil
}
