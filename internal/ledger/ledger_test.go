package ledger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

type LedgerSuite struct {
	suite.Suite
	ledger *Ledger
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	s.ledger = NewSeeded(map[string]float64{
		"c_123": 300.00,
		"c_456": 2000.00,
	})
}

func (s *LedgerSuite) TestBalance() {
	s.Run("seeded customer", func() {
		s.Equal(300.00, s.ledger.Balance("c_123"))
	})

	s.Run("unknown customer has zero balance", func() {
		s.Equal(0.0, s.ledger.Balance("c_unknown"))
	})
}

func (s *LedgerSuite) TestReserve() {
	s.Run("sufficient funds decrements balance", func() {
		s.True(s.ledger.Reserve("c_123", 100.50))
		s.Equal(199.50, s.ledger.Balance("c_123"))
	})

	s.Run("exact balance is sufficient", func() {
		s.ledger.SetBalance("c_exact", 50.0)
		s.True(s.ledger.Reserve("c_exact", 50.0))
		s.Equal(0.0, s.ledger.Balance("c_exact"))
	})

	s.Run("insufficient funds leaves balance unchanged", func() {
		before := s.ledger.Balance("c_456")
		s.False(s.ledger.Reserve("c_456", before+0.01))
		s.Equal(before, s.ledger.Balance("c_456"))
	})

	s.Run("unknown customer cannot reserve", func() {
		s.False(s.ledger.Reserve("c_nobody", 1.0))
	})
}

// Concurrent reservations against one balance must succeed exactly
// floor(B/A) times regardless of interleaving.
func (s *LedgerSuite) TestConcurrentReserve() {
	const (
		balance = 100.0
		amount  = 10.0
		workers = 30
	)
	s.ledger.SetBalance("c_race", balance)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for range workers {
		wg.Go(func() {
			if s.ledger.Reserve("c_race", amount) {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	s.Equal(10, succeeded)
	s.Equal(0.0, s.ledger.Balance("c_race"))
}

// First touch of a customer from many goroutines must create exactly one
// account, not several racing ones.
func (s *LedgerSuite) TestConcurrentFirstAccess() {
	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			s.ledger.Reserve("c_fresh", 1.0)
		})
	}
	wg.Wait()

	s.ledger.SetBalance("c_fresh", 5.0)
	s.Equal(5.0, s.ledger.Balance("c_fresh"))
}
