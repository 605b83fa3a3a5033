package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"payguard/internal/idempotency"
	"payguard/internal/payment/metrics"
	"payguard/internal/ratelimit"
	dErrors "payguard/pkg/domain-errors"
	"payguard/pkg/platform/privacy"
	"payguard/pkg/requestcontext"
)

// SignalSource supplies balances and risk signals for a customer. Either call
// may fail transiently; the agent retries.
type SignalSource interface {
	Balance(ctx context.Context, customerID string) (float64, error)
	RiskSignals(ctx context.Context, customerID string, amount float64) (RiskSignals, error)
}

// BalanceReserver atomically reserves funds. ok=false means insufficient
// balance; err means the collaborator itself failed.
type BalanceReserver interface {
	Reserve(ctx context.Context, customerID string, amount float64) (bool, error)
}

// CaseCreator opens an investigation case for a flagged payment.
type CaseCreator interface {
	CreateCase(ctx context.Context, customerID string, reasons []string) (string, error)
}

// Service coordinates one payment decision end to end: rate limiting,
// idempotent replay, the decision agent, and outcome caching. All state it
// touches is owned by injected dependencies constructed once at startup.
type Service struct {
	limiter  *ratelimit.Limiter
	cache    idempotency.Store
	signals  SignalSource
	reserver BalanceReserver
	cases    CaseCreator
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics attaches Prometheus metrics to the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService validates dependencies and constructs the coordinator.
func NewService(
	limiter *ratelimit.Limiter,
	cache idempotency.Store,
	signals SignalSource,
	reserver BalanceReserver,
	cases CaseCreator,
	logger *slog.Logger,
	opts ...Option,
) (*Service, error) {
	if limiter == nil {
		return nil, errors.New("rate limiter is required")
	}
	if cache == nil {
		return nil, errors.New("idempotency store is required")
	}
	if signals == nil {
		return nil, errors.New("signal source is required")
	}
	if reserver == nil {
		return nil, errors.New("balance reserver is required")
	}
	if cases == nil {
		return nil, errors.New("case creator is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Service{
		limiter:  limiter,
		cache:    cache,
		signals:  signals,
		reserver: reserver,
		cases:    cases,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Decide runs the full decision flow for one request.
//
// The rate limiter is consulted before the idempotency lookup, so a replay
// still spends a token. Outcomes, including internal-error blocks from
// exhausted lookups, are cached under the idempotency key; only reservation
// exhaustion aborts without caching.
func (s *Service) Decide(ctx context.Context, req DecideRequest) (*Outcome, error) {
	start := time.Now()

	if !s.limiter.Allow(req.CustomerID) {
		s.logger.InfoContext(ctx, "request rate limited",
			"customer_id", privacy.RedactCustomerID(req.CustomerID),
		)
		if s.metrics != nil {
			s.metrics.IncRateLimited()
		}
		return nil, dErrors.New(dErrors.CodeRateLimited, "rate limit exceeded for this customer")
	}

	if cached, err := s.cache.Get(ctx, req.IdempotencyKey); err != nil {
		s.logger.ErrorContext(ctx, "idempotency lookup failed",
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "idempotency lookup failed")
	} else if cached != nil {
		outcome, err := decodeOutcome(cached.Body)
		if err != nil {
			return nil, fmt.Errorf("decode cached outcome: %w", err)
		}
		s.logger.InfoContext(ctx, "returning idempotent replay",
			"request_id", outcome.RequestID,
			"decision", outcome.Decision,
		)
		if s.metrics != nil {
			s.metrics.IncIdempotentReplay()
		}
		return outcome, nil
	}

	requestID := requestcontext.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	a := newAgent(requestID, s.signals, s.reserver, s.cases, s.logger)
	outcome, runErr := a.run(ctx, req.CustomerID, req.Amount)
	if outcome == nil {
		// Reservation exhausted: nothing is cached so a later retry with the
		// same key can still succeed.
		return nil, runErr
	}

	if err := s.storeOutcome(ctx, req.IdempotencyKey, outcome); err != nil {
		s.logger.ErrorContext(ctx, "failed to cache outcome",
			"request_id", requestID,
			"error", err,
		)
	}

	s.logger.InfoContext(ctx, "payment decided",
		"request_id", requestID,
		"customer_id", privacy.RedactCustomerID(req.CustomerID),
		"decision", outcome.Decision,
		"reasons", outcome.Reasons,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if s.metrics != nil {
		s.metrics.ObserveDecision(string(outcome.Decision), time.Since(start))
	}

	// runErr carries ErrCaseCreation when the case sink is down; the outcome
	// is final either way.
	return outcome, runErr
}

func (s *Service) storeOutcome(ctx context.Context, key string, outcome *Outcome) error {
	body, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	return s.cache.Put(ctx, key, idempotency.Entry{
		StatusCode: http.StatusOK,
		Body:       body,
	})
}

func decodeOutcome(body []byte) (*Outcome, error) {
	var outcome Outcome
	if err := json.Unmarshal(body, &outcome); err != nil {
		return nil, err
	}
	if !outcome.Decision.IsValid() {
		return nil, fmt.Errorf("cached outcome has unknown decision %q", outcome.Decision)
	}
	return &outcome, nil
}
