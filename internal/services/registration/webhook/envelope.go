package webhook

import (
	"encoding/json"
	"fmt"
	"strings"
)

// serialNoteKey is the metadata key the order-creation flow attaches so a
// payment event can be traced back to its application.
const serialNoteKey = "form_serial_number"

// PaymentEntity is the payment object nested in the event payload at
// payload.payment.entity.
type PaymentEntity struct {
	ID       string   `json:"id"`
	OrderID  string   `json:"order_id"`
	Amount   int64    `json:"amount"`
	Currency string   `json:"currency"`
	Status   string   `json:"status"`
	Method   string   `json:"method"`
	Email    string   `json:"email"`
	Contact  string   `json:"contact"`
	Notes    noteList `json:"notes"`
}

// noteList tolerates the processor serializing empty notes as [] or null
// instead of an object.
type noteList map[string]string

func (n *noteList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "[]" {
		*n = nil
		return nil
	}
	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*n = values
	return nil
}

// SerialNumber returns the application reference attached at order creation,
// or "" when the event carries none.
func (e PaymentEntity) SerialNumber() string {
	return strings.TrimSpace(e.Notes[serialNoteKey])
}

// ParseEvent decodes the payment entity from raw webhook bytes. It is called
// only after Verify has authenticated those same bytes.
func ParseEvent(raw []byte) (PaymentEntity, error) {
	var envelope struct {
		Event   string `json:"event"`
		Payload struct {
			Payment struct {
				Entity PaymentEntity `json:"entity"`
			} `json:"payment"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return PaymentEntity{}, fmt.Errorf("decode webhook envelope: %w", err)
	}
	entity := envelope.Payload.Payment.Entity
	if strings.TrimSpace(entity.ID) == "" {
		return PaymentEntity{}, fmt.Errorf("webhook envelope has no payment entity")
	}
	return entity, nil
}
