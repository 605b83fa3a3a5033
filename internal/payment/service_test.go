package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"payguard/internal/idempotency"
	"payguard/internal/ratelimit"
)

// =============================================================================
// Mock collaborators
// =============================================================================

type mockSignalSource struct {
	balance         float64
	balanceFailures int // fail this many calls before succeeding
	balanceCalls    int

	signals      RiskSignals
	riskFailures int
	riskCalls    int
}

func (m *mockSignalSource) Balance(_ context.Context, _ string) (float64, error) {
	m.balanceCalls++
	if m.balanceCalls <= m.balanceFailures {
		return 0, errors.New("signal backend unavailable")
	}
	return m.balance, nil
}

func (m *mockSignalSource) RiskSignals(_ context.Context, _ string, _ float64) (RiskSignals, error) {
	m.riskCalls++
	if m.riskCalls <= m.riskFailures {
		return RiskSignals{}, errors.New("signal backend unavailable")
	}
	return m.signals, nil
}

type mockReserver struct {
	ok        bool
	shouldErr bool
	calls     int
	lastID    string
	lastAmt   float64
}

func (m *mockReserver) Reserve(_ context.Context, customerID string, amount float64) (bool, error) {
	m.calls++
	m.lastID = customerID
	m.lastAmt = amount
	if m.shouldErr {
		return false, errors.New("ledger unavailable")
	}
	return m.ok, nil
}

type mockCaseCreator struct {
	shouldErr   bool
	calls       int
	lastReasons []string
}

func (m *mockCaseCreator) CreateCase(_ context.Context, _ string, reasons []string) (string, error) {
	m.calls++
	m.lastReasons = reasons
	if m.shouldErr {
		return "", errors.New("case backend unavailable")
	}
	return "case_test", nil
}

// =============================================================================
// Service suite
// =============================================================================

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	clock    time.Time
	limiter  *ratelimit.Limiter
	cache    *idempotency.InMemoryStore
	signals  *mockSignalSource
	reserver *mockReserver
	cases    *mockCaseCreator
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// Generous capacity so rate limiting only bites where a test wants it to.
	s.limiter = ratelimit.NewLimiter(100, 5.0, ratelimit.WithClock(func() time.Time { return s.clock }))
	s.cache = idempotency.NewInMemoryStore()
	s.signals = &mockSignalSource{balance: 300.00}
	s.reserver = &mockReserver{ok: true}
	s.cases = &mockCaseCreator{}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var err error
	s.service, err = NewService(s.limiter, s.cache, s.signals, s.reserver, s.cases, logger)
	s.Require().NoError(err)
}

func (s *ServiceSuite) decide(customerID string, amount float64, key string) (*Outcome, error) {
	return s.service.Decide(s.ctx, DecideRequest{
		CustomerID:     customerID,
		Amount:         amount,
		Currency:       "USD",
		PayeeID:        "p_789",
		IdempotencyKey: key,
	})
}

func (s *ServiceSuite) TestNewService() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.Run("nil limiter returns error", func() {
		_, err := NewService(nil, s.cache, s.signals, s.reserver, s.cases, logger)
		s.Error(err)
		s.Contains(err.Error(), "rate limiter is required")
	})

	s.Run("nil idempotency store returns error", func() {
		_, err := NewService(s.limiter, nil, s.signals, s.reserver, s.cases, logger)
		s.Error(err)
	})

	s.Run("nil signal source returns error", func() {
		_, err := NewService(s.limiter, s.cache, nil, s.reserver, s.cases, logger)
		s.Error(err)
	})
}

func (s *ServiceSuite) TestAllowPath() {
	outcome, err := s.decide("c_123", 100.50, "key-allow")
	s.Require().NoError(err)

	s.Equal(DecisionAllow, outcome.Decision)
	s.Empty(outcome.Reasons)
	s.NotEmpty(outcome.RequestID)
	s.Equal(1, s.reserver.calls)
	s.Equal("c_123", s.reserver.lastID)
	s.Equal(100.50, s.reserver.lastAmt)
	s.Equal(0, s.cases.calls, "allow must not open a case")

	steps := stepNames(outcome.AgentTrace)
	s.Equal([]string{"plan", "tool:getBalance", "tool:getRiskSignals", "decision", "tool:reserveBalance"}, steps)
}

func (s *ServiceSuite) TestReviewPath() {
	s.signals.balance = 2000.00
	s.signals.signals = RiskSignals{RecentDisputes: 1, DeviceChange: true}

	outcome, err := s.decide("c_456", 1500.00, "key-review")
	s.Require().NoError(err)

	s.Equal(DecisionReview, outcome.Decision)
	s.Equal([]string{ReasonAmountAboveDailyThreshold, ReasonUnrecognizedDevice}, outcome.Reasons)
	s.Equal(0, s.reserver.calls, "review must not reserve")
	s.Equal(1, s.cases.calls)
	s.Equal(outcome.Reasons, s.cases.lastReasons)
}

func (s *ServiceSuite) TestInsufficientFundsBlocks() {
	s.signals.balance = 50.00

	outcome, err := s.decide("c_123", 100.00, "key-poor")
	s.Require().NoError(err)

	s.Equal(DecisionBlock, outcome.Decision)
	s.Equal([]string{ReasonInsufficientFunds}, outcome.Reasons)
	s.Equal(1, s.cases.calls, "block opens a case")
}

func (s *ServiceSuite) TestBalanceLookupExhausted() {
	s.signals.balanceFailures = 3

	outcome, err := s.decide("c_123", 100.00, "key-bal-down")
	s.Require().NoError(err)

	s.Equal(DecisionBlock, outcome.Decision)
	s.Equal([]string{ReasonInternalErrorBalanceCheck}, outcome.Reasons)
	s.Equal(3, s.signals.balanceCalls, "three total attempts")
	s.Contains(stepNames(outcome.AgentTrace), "tool:getBalance")
	s.Equal("failed after 3 attempts", lastDetailFor(outcome.AgentTrace, "tool:getBalance"))

	s.Run("internal-error outcome is cached", func() {
		entry, err := s.cache.Get(s.ctx, "key-bal-down")
		s.Require().NoError(err)
		s.NotNil(entry)
	})
}

func (s *ServiceSuite) TestBalanceLookupRecoversWithinRetries() {
	s.signals.balanceFailures = 2

	outcome, err := s.decide("c_123", 100.00, "key-bal-flaky")
	s.Require().NoError(err)

	s.Equal(DecisionAllow, outcome.Decision)
	s.Equal(3, s.signals.balanceCalls)
}

func (s *ServiceSuite) TestRiskLookupExhausted() {
	s.signals.riskFailures = 3

	outcome, err := s.decide("c_123", 100.00, "key-risk-down")
	s.Require().NoError(err)

	s.Equal(DecisionBlock, outcome.Decision)
	s.Equal([]string{ReasonInternalErrorRiskCheck}, outcome.Reasons)
}

func (s *ServiceSuite) TestReserveRaceOverturnsToBlock() {
	s.reserver.ok = false

	outcome, err := s.decide("c_123", 100.00, "key-race")
	s.Require().NoError(err)

	s.Equal(DecisionBlock, outcome.Decision)
	s.Equal([]string{ReasonInsufficientFundsOnReserve}, outcome.Reasons)
}

func (s *ServiceSuite) TestReserveExhaustionIsFatal() {
	s.reserver.shouldErr = true

	outcome, err := s.decide("c_123", 100.00, "key-ledger-down")
	s.Nil(outcome)

	var exhausted *ToolExhaustedError
	s.Require().ErrorAs(err, &exhausted)
	s.Equal("reserveBalance", exhausted.Tool)
	s.Equal(3, exhausted.Attempts)

	s.Run("nothing cached so a retry can succeed", func() {
		entry, err := s.cache.Get(s.ctx, "key-ledger-down")
		s.Require().NoError(err)
		s.Nil(entry)
	})
}

func (s *ServiceSuite) TestCaseCreationExhaustionKeepsOutcome() {
	s.signals.balance = 2000.00
	s.signals.signals = RiskSignals{RecentDisputes: 2}
	s.cases.shouldErr = true

	outcome, err := s.decide("c_456", 500.00, "key-cases-down")
	s.Require().NotNil(outcome)
	s.Require().ErrorIs(err, ErrCaseCreation)
	s.Equal(DecisionReview, outcome.Decision)

	s.Run("decided outcome is still cached", func() {
		entry, err := s.cache.Get(s.ctx, "key-cases-down")
		s.Require().NoError(err)
		s.NotNil(entry)
	})
}

func (s *ServiceSuite) TestRateLimited() {
	limiter := ratelimit.NewLimiter(1, 5.0, ratelimit.WithClock(func() time.Time { return s.clock }))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service, err := NewService(limiter, s.cache, s.signals, s.reserver, s.cases, logger)
	s.Require().NoError(err)

	_, err = service.Decide(s.ctx, DecideRequest{CustomerID: "c_123", Amount: 1, IdempotencyKey: "k1"})
	s.Require().NoError(err)

	_, err = service.Decide(s.ctx, DecideRequest{CustomerID: "c_123", Amount: 1, IdempotencyKey: "k2"})
	s.Require().Error(err)
	s.Contains(err.Error(), "rate_limited")
}

func (s *ServiceSuite) TestIdempotentReplay() {
	first, err := s.decide("c_123", 100.00, "key-replay")
	s.Require().NoError(err)
	s.Equal(1, s.reserver.calls)

	// Different body, same key: stored outcome wins and no new side effects.
	second, err := s.decide("c_123", 999.00, "key-replay")
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Equal(1, s.reserver.calls, "replay must not reserve again")
	s.Equal(1, s.signals.balanceCalls, "replay must not re-fetch signals")
}

// =============================================================================
// Trace helpers
// =============================================================================

func stepNames(trace []TraceStep) []string {
	names := make([]string, len(trace))
	for i, step := range trace {
		names[i] = step.Step
	}
	return names
}

func lastDetailFor(trace []TraceStep, step string) string {
	detail := ""
	for _, ts := range trace {
		if ts.Step == step {
			detail = ts.Detail
		}
	}
	return detail
}
