package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	perrors "github.com/quizrally/registration/internal/platform/errors"
	"github.com/quizrally/registration/internal/services/registration/storage"
)

type receiptResponse struct {
	Success       bool                 `json:"success"`
	Application   *applicationResponse `json:"application"`
	PaymentStatus string               `json:"payment_status"`
	Payments      []receiptPayment     `json:"payments"`
}

type receiptPayment struct {
	PaymentID     string `json:"payment_id"`
	OrderID       string `json:"order_id"`
	Amount        int64  `json:"amount"`
	AmountDisplay string `json:"amount_display,omitempty"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	Method        string `json:"method,omitempty"`
	ReceivedAt    string `json:"received_at"`
}

// handleReceipt returns one application together with every payment event the
// ledger holds for it.
func (h *Handler) handleReceipt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	serialNumber := strings.TrimSpace(r.URL.Query().Get("serial_number"))
	if serialNumber == "" {
		writeError(w, perrors.New(perrors.CodeValidation, "serial_number is required"))
		return
	}

	ctx := r.Context()
	application, err := h.store.GetApplication(ctx, serialNumber)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, perrors.New(perrors.CodeNotFound, "no application for serial number"))
			return
		}
		writeError(w, perrors.Wrap(perrors.CodeStoreUnavailable, "get application", err))
		return
	}

	events, err := h.store.ListPaymentsBySerial(ctx, serialNumber)
	if err != nil {
		writeError(w, perrors.Wrap(perrors.CodeStoreUnavailable, "list payments", err))
		return
	}

	payments := make([]receiptPayment, 0, len(events))
	for _, event := range events {
		payments = append(payments, receiptPayment{
			PaymentID:     event.PaymentID,
			OrderID:       event.OrderID,
			Amount:        event.Amount,
			AmountDisplay: formatMinorUnits(event.Amount, event.Currency),
			Currency:      event.Currency,
			Status:        event.Status,
			Method:        event.Method,
			ReceivedAt:    event.ReceivedAt.Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, receiptResponse{
		Success:       true,
		Application:   toApplicationResponse(application),
		PaymentStatus: string(effectiveStatus(application, events)),
		Payments:      payments,
	})
}

// effectiveStatus derives the application's payment state from the ledger.
// The application row itself is never mutated after creation; the ledger is
// the source of truth once events arrive.
func effectiveStatus(application storage.Application, events []storage.PaymentEvent) storage.PaymentStatus {
	sawFailure := false
	for _, event := range events {
		switch event.Status {
		case "captured", "authorized":
			return storage.PaymentStatusPaid
		case "failed":
			sawFailure = true
		}
	}
	if sawFailure {
		return storage.PaymentStatusFailed
	}
	return application.PaymentStatus
}

// formatMinorUnits renders a minor-unit amount as a localized currency
// string, e.g. 30000 INR -> "₹ 300.00". The minor-unit scale comes from the
// currency itself, so zero-decimal codes like JPY divide by 1, not 100.
// Unknown codes render as "".
func formatMinorUnits(amount int64, code string) string {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return ""
	}
	scale, _ := currency.Standard.Rounding(unit)
	divisor := 1.0
	for i := 0; i < scale; i++ {
		divisor *= 10
	}
	printer := message.NewPrinter(language.English)
	return printer.Sprint(currency.Symbol(unit.Amount(float64(amount) / divisor)))
}
