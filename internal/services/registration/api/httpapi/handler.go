// Package httpapi exposes the registration service's public JSON API.
package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	perrors "github.com/quizrally/registration/internal/platform/errors"
	"github.com/quizrally/registration/internal/services/registration/blob"
	"github.com/quizrally/registration/internal/services/registration/checkout"
	"github.com/quizrally/registration/internal/services/registration/metrics"
	"github.com/quizrally/registration/internal/services/registration/storage"
)

const requestIDHeader = "X-Request-ID"

// Store is the persistence surface the API depends on.
type Store interface {
	storage.SequenceStore
	storage.ApplicationStore
	storage.PaymentLedger
}

// OrderCreator creates checkout orders with the payment processor.
type OrderCreator interface {
	CreateOrder(ctx context.Context, serialNumber string, amount int64, currency string) (checkout.Order, error)
}

// Config holds the handler's request-independent settings.
type Config struct {
	// WebhookSecret signs inbound payment events. Webhook handling is
	// disabled until it is configured.
	WebhookSecret []byte
	// OrderAmount is the entry fee in the currency's minor unit.
	OrderAmount int64
	// OrderCurrency is the ISO 4217 code orders are created in.
	OrderCurrency string
}

// Handler serves the registration JSON API.
type Handler struct {
	store   Store
	blobs   blob.Store
	orders  OrderCreator
	metrics *metrics.Metrics
	cfg     Config
	tracer  trace.Tracer
	clock   func() time.Time
}

// NewHandler creates a configured API handler.
func NewHandler(store Store, blobs blob.Store, orders OrderCreator, m *metrics.Metrics, cfg Config) *Handler {
	return &Handler{
		store:   store,
		blobs:   blobs,
		orders:  orders,
		metrics: m,
		cfg:     cfg,
		tracer:  otel.Tracer("quizrally.registration/httpapi"),
		clock:   time.Now,
	}
}

// RegisterRoutes mounts the API endpoints on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/submit", h.withRequest("submit", h.handleSubmit))
	mux.HandleFunc("/api/orders", h.withRequest("orders", h.handleCreateOrder))
	mux.HandleFunc("/api/webhook", h.withRequest("webhook", h.handleWebhook))
	mux.HandleFunc("/api/receipt", h.withRequest("receipt", h.handleReceipt))
}

// withRequest assigns a request id and wraps the handler in a span.
func (h *Handler) withRequest(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		ctx, span := h.tracer.Start(r.Context(), "registration."+name)
		defer span.End()
		next(w, r.WithContext(ctx))
	}
}

// writeJSON writes a JSON body with normalized headers and status.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeError maps a domain error onto the transport and logs server faults.
// Signature failures get a deliberately generic body.
func writeError(w http.ResponseWriter, err error) {
	code := perrors.CodeOf(err)
	status := perrors.HTTPStatus(code)

	message := err.Error()
	switch code {
	case perrors.CodeSignatureInvalid:
		message = "invalid webhook request"
	case perrors.CodeUnknown, perrors.CodeStoreUnavailable, perrors.CodeConflictRetryExhausted, perrors.CodeProcessorUnavailable:
		log.Printf("registration api error (%s): %v", code, err)
		message = "internal error"
	}
	writeJSON(w, status, errorResponse{Success: false, Error: message})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Success: false, Error: "method not allowed"})
}
