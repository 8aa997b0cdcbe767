package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quizrally/registration/internal/services/registration/storage"
)

// RecordPaymentIfAbsent appends one payment event unless the payment id is
// already recorded.
//
// The existence check and the insert are a single conditional statement
// (ON CONFLICT DO NOTHING on the payment_id primary key), so a redelivered
// webhook racing a first delivery still yields exactly one row. A duplicate
// reports inserted = false with no error.
func (s *Store) RecordPaymentIfAbsent(ctx context.Context, event storage.PaymentEvent) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}
	paymentID := strings.TrimSpace(event.PaymentID)
	serialNumber := strings.TrimSpace(event.SerialNumber)
	if paymentID == "" {
		return false, fmt.Errorf("payment id is required")
	}
	if serialNumber == "" {
		return false, fmt.Errorf("serial number is required")
	}
	receivedAt := event.ReceivedAt.UTC()
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}

	res, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO payments (
		   payment_id,
		   order_id,
		   serial_number,
		   amount,
		   currency,
		   status,
		   method,
		   email,
		   contact,
		   received_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (payment_id) DO NOTHING`,
		paymentID,
		event.OrderID,
		serialNumber,
		event.Amount,
		event.Currency,
		event.Status,
		event.Method,
		event.Email,
		event.Contact,
		toMillis(receivedAt),
	)
	if err != nil {
		return false, fmt.Errorf("record payment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record payment rows affected: %w", err)
	}
	return affected == 1, nil
}

// ListPaymentsBySerial returns all payment events recorded for a serial
// number, oldest first.
func (s *Store) ListPaymentsBySerial(ctx context.Context, serialNumber string) ([]storage.PaymentEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	serialNumber = strings.TrimSpace(serialNumber)
	if serialNumber == "" {
		return nil, fmt.Errorf("serial number is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT payment_id, order_id, serial_number, amount, currency,
		        status, method, email, contact, received_at
		   FROM payments
		  WHERE serial_number = ?
		  ORDER BY received_at ASC, payment_id ASC`,
		serialNumber,
	)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var events []storage.PaymentEvent
	for rows.Next() {
		var event storage.PaymentEvent
		var receivedAt int64
		if err := rows.Scan(
			&event.PaymentID,
			&event.OrderID,
			&event.SerialNumber,
			&event.Amount,
			&event.Currency,
			&event.Status,
			&event.Method,
			&event.Email,
			&event.Contact,
			&receivedAt,
		); err != nil {
			return nil, fmt.Errorf("list payments: %w", err)
		}
		event.ReceivedAt = fromMillis(receivedAt)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return events, nil
}
