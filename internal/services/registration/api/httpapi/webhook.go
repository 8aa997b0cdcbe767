package httpapi

import (
	"io"
	"log"
	"net/http"

	perrors "github.com/quizrally/registration/internal/platform/errors"
	"github.com/quizrally/registration/internal/services/registration/metrics"
	"github.com/quizrally/registration/internal/services/registration/storage"
	"github.com/quizrally/registration/internal/services/registration/webhook"
)

const (
	webhookBodyLimit       = 1 << 20 // processor events are small; cap replay payloads
	webhookSignatureHeader = "X-Razorpay-Signature"
)

type webhookResponse struct {
	Success      bool   `json:"success"`
	PaymentID    string `json:"payment_id"`
	SerialNumber string `json:"serial_number"`
}

// handleWebhook reconciles one payment event delivery.
//
// The delivery walks verify -> extract -> record. The raw body is captured
// before parsing because the signature covers those exact bytes. A duplicate
// payment id acknowledges with the same 200 as a fresh insert so the
// processor stops redelivering.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if len(h.cfg.WebhookSecret) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Success: false, Error: "webhook secret is not configured"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, webhookBodyLimit)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.metrics.WebhookDeliveries.WithLabelValues(metrics.WebhookOutcomeMalformed).Inc()
		writeError(w, perrors.Wrap(perrors.CodeValidation, "read webhook body", err))
		return
	}

	signature := r.Header.Get(webhookSignatureHeader)
	if !webhook.Verify(payload, signature, h.cfg.WebhookSecret) {
		h.metrics.WebhookDeliveries.WithLabelValues(metrics.WebhookOutcomeRejected).Inc()
		log.Printf("webhook delivery rejected: signature verification failed")
		writeError(w, perrors.New(perrors.CodeSignatureInvalid, "signature verification failed"))
		return
	}

	entity, err := webhook.ParseEvent(payload)
	if err != nil {
		h.metrics.WebhookDeliveries.WithLabelValues(metrics.WebhookOutcomeMalformed).Inc()
		writeError(w, perrors.Wrap(perrors.CodeEnvelopeMalformed, "parse webhook event", err))
		return
	}

	serialNumber := entity.SerialNumber()
	if serialNumber == "" {
		h.metrics.WebhookDeliveries.WithLabelValues(metrics.WebhookOutcomeMalformed).Inc()
		writeError(w, perrors.New(perrors.CodeReferenceMissing, "missing form_serial_number"))
		return
	}

	inserted, err := h.store.RecordPaymentIfAbsent(r.Context(), storage.PaymentEvent{
		PaymentID:    entity.ID,
		OrderID:      entity.OrderID,
		SerialNumber: serialNumber,
		Amount:       entity.Amount,
		Currency:     entity.Currency,
		Status:       entity.Status,
		Method:       entity.Method,
		Email:        entity.Email,
		Contact:      entity.Contact,
		ReceivedAt:   h.clock().UTC(),
	})
	if err != nil {
		h.metrics.WebhookDeliveries.WithLabelValues(metrics.WebhookOutcomeFailed).Inc()
		writeError(w, perrors.Wrap(perrors.CodeStoreUnavailable, "record payment", err))
		return
	}
	if inserted {
		h.metrics.WebhookDeliveries.WithLabelValues(metrics.WebhookOutcomeRecorded).Inc()
	} else {
		h.metrics.WebhookDeliveries.WithLabelValues(metrics.WebhookOutcomeDuplicate).Inc()
	}

	// Identical acknowledgment for fresh and duplicate deliveries.
	writeJSON(w, http.StatusOK, webhookResponse{
		Success:      true,
		PaymentID:    entity.ID,
		SerialNumber: serialNumber,
	})
}
