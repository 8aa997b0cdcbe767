package httpapi

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	perrors "github.com/quizrally/registration/internal/platform/errors"
	"github.com/quizrally/registration/internal/services/registration/storage"
)

const submitBodyLimit = 32 << 20 // base64 photos and signatures

type submitRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	P1PhotoBase64     string `json:"p1_photoBase64"`
	P2PhotoBase64     string `json:"p2_photoBase64"`
	P1SignatureBase64 string `json:"p1_signatureBase64"`
	P2SignatureBase64 string `json:"p2_signatureBase64"`
}

type submitResponse struct {
	Success      bool                 `json:"success"`
	SerialNumber string               `json:"serial_number"`
	Application  *applicationResponse `json:"application,omitempty"`
}

type applicationResponse struct {
	SerialNumber   string `json:"serial_number"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	P1PhotoURL     string `json:"p1_photo_url,omitempty"`
	P2PhotoURL     string `json:"p2_photo_url,omitempty"`
	P1SignatureURL string `json:"p1_signature_url,omitempty"`
	P2SignatureURL string `json:"p2_signature_url,omitempty"`
	PaymentStatus  string `json:"payment_status"`
	CreatedAt      string `json:"created_at"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handlePeekSerial(w, r)
	case http.MethodPost:
		h.handleCreateSubmission(w, r)
	default:
		methodNotAllowed(w)
	}
}

// handlePeekSerial shows the serial the next submission would receive. It
// never mutates the counter, so refreshing the form page stays side-effect
// free.
func (h *Handler) handlePeekSerial(w http.ResponseWriter, r *http.Request) {
	serialNumber, err := h.store.PeekSerial(r.Context())
	if err != nil {
		writeError(w, perrors.Wrap(perrors.CodeStoreUnavailable, "peek serial", err))
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{Success: true, SerialNumber: serialNumber})
}

func (h *Handler) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, submitBodyLimit)
	var req submitRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, perrors.Wrap(perrors.CodeValidation, "invalid submission body", err))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, perrors.New(perrors.CodeValidation, "name is required"))
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, perrors.New(perrors.CodeValidation, "email is required"))
		return
	}

	ctx := r.Context()
	serialNumber, err := h.store.AllocateSerial(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrRetryExhausted) {
			writeError(w, perrors.Wrap(perrors.CodeConflictRetryExhausted, "allocate serial", err))
			return
		}
		writeError(w, perrors.Wrap(perrors.CodeStoreUnavailable, "allocate serial", err))
		return
	}
	h.metrics.SerialAllocations.Inc()

	// From here on the serial is consumed: an upload or insert failure skips
	// the number rather than reusing it.
	uploads := []struct {
		payload string
		folder  string
		label   string
		target  *string
	}{
		{req.P1PhotoBase64, "photos", "p1_photo", nil},
		{req.P2PhotoBase64, "photos", "p2_photo", nil},
		{req.P1SignatureBase64, "signatures", "p1_signature", nil},
		{req.P2SignatureBase64, "signatures", "p2_signature", nil},
	}
	application := storage.Application{
		SerialNumber:  serialNumber,
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.TrimSpace(req.Email),
		PaymentStatus: storage.PaymentStatusPending,
		CreatedAt:     h.clock().UTC(),
	}
	uploads[0].target = &application.P1PhotoURL
	uploads[1].target = &application.P2PhotoURL
	uploads[2].target = &application.P1SignatureURL
	uploads[3].target = &application.P2SignatureURL

	for _, upload := range uploads {
		if strings.TrimSpace(upload.payload) == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(upload.payload)
		if err != nil {
			writeError(w, perrors.Wrap(perrors.CodeValidation, upload.label+" is not valid base64", err))
			return
		}
		name := fmt.Sprintf("%s/%s_%s_%d.jpg", upload.folder, serialNumber, upload.label, h.clock().UnixMilli())
		url, err := h.blobs.Save(ctx, name, data)
		if err != nil {
			writeError(w, perrors.Wrap(perrors.CodeStoreUnavailable, "store "+upload.label, err))
			return
		}
		*upload.target = url
	}

	if err := h.store.CreateApplication(ctx, application); err != nil {
		h.metrics.Submissions.WithLabelValues("failed").Inc()
		writeError(w, perrors.Wrap(perrors.CodeStoreUnavailable, "create application", err))
		return
	}
	h.metrics.Submissions.WithLabelValues("created").Inc()

	writeJSON(w, http.StatusOK, submitResponse{
		Success:      true,
		SerialNumber: serialNumber,
		Application:  toApplicationResponse(application),
	})
}

func toApplicationResponse(application storage.Application) *applicationResponse {
	return &applicationResponse{
		SerialNumber:   application.SerialNumber,
		Name:           application.Name,
		Email:          application.Email,
		P1PhotoURL:     application.P1PhotoURL,
		P2PhotoURL:     application.P2PhotoURL,
		P1SignatureURL: application.P1SignatureURL,
		P2SignatureURL: application.P2SignatureURL,
		PaymentStatus:  string(application.PaymentStatus),
		CreatedAt:      application.CreatedAt.Format(time.RFC3339),
	}
}
