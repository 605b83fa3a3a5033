// Package ledger owns customer balances and the per-customer locks that make
// reservations atomic. Balances are in-memory and live for the process
// lifetime; reservations for the same customer are fully serialized while
// different customers proceed in parallel.
package ledger

import "sync"

// account pairs a balance with the lock that guards it. Accounts are created
// lazily on first reference and never removed.
type account struct {
	mu      sync.Mutex
	balance float64
}

// Ledger is the concurrency-safe balance store.
type Ledger struct {
	mu       sync.RWMutex // guards the accounts map, not balances
	accounts map[string]*account
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{accounts: make(map[string]*account)}
}

// NewSeeded creates a ledger pre-loaded with the given balances.
func NewSeeded(balances map[string]float64) *Ledger {
	l := New()
	for customerID, balance := range balances {
		l.SetBalance(customerID, balance)
	}
	return l
}

// account returns the account for customerID, creating it with a zero balance
// on first reference. The registry lock covers only the map insertion; balance
// mutation happens under the account's own lock.
func (l *Ledger) account(customerID string) *account {
	l.mu.RLock()
	acct := l.accounts[customerID]
	l.mu.RUnlock()
	if acct != nil {
		return acct
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if acct := l.accounts[customerID]; acct != nil {
		return acct
	}
	acct = &account{}
	l.accounts[customerID] = acct
	return acct
}

// Balance returns the current balance for customerID, zero for customers the
// ledger has never seen.
func (l *Ledger) Balance(customerID string) float64 {
	acct := l.account(customerID)
	acct.mu.Lock()
	defer acct.mu.Unlock()
	return acct.balance
}

// SetBalance overwrites the balance for customerID. Used for seeding.
func (l *Ledger) SetBalance(customerID string, balance float64) {
	acct := l.account(customerID)
	acct.mu.Lock()
	defer acct.mu.Unlock()
	acct.balance = balance
}

// Reserve atomically decrements the balance by amount if sufficient funds are
// available. Returns false and leaves the balance untouched otherwise. The
// read-compare-mutate sequence runs entirely under the account lock, so no
// other reservation for the same customer can interleave.
func (l *Ledger) Reserve(customerID string, amount float64) bool {
	acct := l.account(customerID)
	acct.mu.Lock()
	defer acct.mu.Unlock()

	if acct.balance < amount {
		return false
	}
	acct.balance -= amount
	return true
}
