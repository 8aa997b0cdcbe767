package httpapi

import (
	"errors"
	"net/http"
	"strings"

	perrors "github.com/quizrally/registration/internal/platform/errors"
	"github.com/quizrally/registration/internal/services/registration/checkout"
	"github.com/quizrally/registration/internal/services/registration/storage"
)

type createOrderRequest struct {
	SerialNumber string `json:"form_serial_number"`
}

type createOrderResponse struct {
	Success bool           `json:"success"`
	Order   checkout.Order `json:"order"`
}

// handleCreateOrder creates a processor order for an existing application.
// The serial number rides along in the order notes; the webhook later uses it
// to reconcile the payment back to the application.
func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if h.orders == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Success: false, Error: "checkout is not configured"})
		return
	}

	var req createOrderRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, perrors.Wrap(perrors.CodeValidation, "invalid order body", err))
		return
	}
	serialNumber := strings.TrimSpace(req.SerialNumber)
	if serialNumber == "" {
		writeError(w, perrors.New(perrors.CodeValidation, "form_serial_number is required"))
		return
	}

	ctx := r.Context()
	if _, err := h.store.GetApplication(ctx, serialNumber); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, perrors.New(perrors.CodeNotFound, "no application for serial number"))
			return
		}
		writeError(w, perrors.Wrap(perrors.CodeStoreUnavailable, "get application", err))
		return
	}

	order, err := h.orders.CreateOrder(ctx, serialNumber, h.cfg.OrderAmount, h.cfg.OrderCurrency)
	if err != nil {
		writeError(w, perrors.Wrap(perrors.CodeProcessorUnavailable, "create order", err))
		return
	}
	h.metrics.OrdersCreated.Inc()

	writeJSON(w, http.StatusOK, createOrderResponse{Success: true, Order: order})
}
