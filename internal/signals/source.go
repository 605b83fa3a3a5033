// Package signals provides the static signal source used in place of a real
// risk backend. Balances come from the ledger; risk signals follow a fixed
// stub heuristic.
package signals

import (
	"context"
	"math/rand/v2"
	"strings"

	"payguard/internal/ledger"
	"payguard/internal/payment"
)

// StaticSource implements payment.SignalSource against the in-process ledger.
type StaticSource struct {
	ledger *ledger.Ledger
}

// NewStaticSource creates a signal source backed by the given ledger.
func NewStaticSource(l *ledger.Ledger) *StaticSource {
	return &StaticSource{ledger: l}
}

// Balance returns the customer's current ledger balance, zero for unknown
// customers.
func (s *StaticSource) Balance(_ context.Context, customerID string) (float64, error) {
	return s.ledger.Balance(customerID), nil
}

// RiskSignals produces stub risk signals: trusted test customers (ids
// containing "123") are always clean, large amounts always look risky, and
// everything else is randomized.
func (s *StaticSource) RiskSignals(_ context.Context, customerID string, amount float64) (payment.RiskSignals, error) {
	if strings.Contains(customerID, "123") {
		return payment.RiskSignals{RecentDisputes: 0, DeviceChange: false}, nil
	}
	if amount > 1000 {
		return payment.RiskSignals{RecentDisputes: 1, DeviceChange: true}, nil
	}
	return payment.RiskSignals{
		RecentDisputes: rand.IntN(4),
		DeviceChange:   rand.IntN(2) == 1,
	}, nil
}
