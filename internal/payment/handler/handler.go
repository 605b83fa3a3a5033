package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"payguard/internal/payment"
	dErrors "payguard/pkg/domain-errors"
	"payguard/pkg/platform/httputil"
	"payguard/pkg/requestcontext"
)

// IdempotencyKeyHeader carries the client-supplied idempotency key.
const IdempotencyKeyHeader = "Idempotency-Key"

// Service defines the interface for payment decisions.
type Service interface {
	Decide(ctx context.Context, req payment.DecideRequest) (*payment.Outcome, error)
}

// Handler wires payment endpoints to the payment service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a payment handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts payment endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/payments/decide", h.HandleDecide)
}

// HandleDecide handles POST /payments/decide requests.
func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	idempotencyKey := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if idempotencyKey == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "Idempotency-Key header is required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[DecideRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	outcome, err := h.service.Decide(ctx, payment.DecideRequest{
		CustomerID:     req.CustomerID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		PayeeID:        req.PayeeID,
		IdempotencyKey: idempotencyKey,
	})

	switch {
	case err == nil:
		// fall through to the success response

	case errors.Is(err, payment.ErrCaseCreation) && outcome != nil:
		// The decision is final; a dead case sink must not block it.
		h.logger.WarnContext(ctx, "case creation failed, returning decided outcome",
			"request_id", requestID,
			"decision", outcome.Decision,
			"error", err,
		)

	default:
		var exhausted *payment.ToolExhaustedError
		if errors.As(err, &exhausted) {
			h.logger.ErrorContext(ctx, "collaborator exhausted all retries",
				"request_id", requestID,
				"tool", exhausted.Tool,
				"attempts", exhausted.Attempts,
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "decision could not be completed"))
			return
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromOutcome(outcome))
}
