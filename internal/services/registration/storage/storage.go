// Package storage defines persistence contracts for registration service state.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrRetryExhausted indicates a counter update kept losing the database
	// lock for the whole bounded retry budget.
	ErrRetryExhausted = errors.New("retry budget exhausted")
)

// PaymentStatus tracks where an application sits in the payment flow.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Application stores one participant submission, keyed by serial number.
type Application struct {
	SerialNumber   string
	Name           string
	Email          string
	P1PhotoURL     string
	P2PhotoURL     string
	P1SignatureURL string
	P2SignatureURL string
	PaymentStatus  PaymentStatus
	CreatedAt      time.Time
}

// PaymentEvent stores one processor-reported payment delivery. The ledger is
// append-only: rows are never mutated or deleted, and PaymentID is unique.
type PaymentEvent struct {
	PaymentID    string
	OrderID      string
	SerialNumber string
	Amount       int64
	Currency     string
	Status       string
	Method       string
	Email        string
	Contact      string
	ReceivedAt   time.Time
}

// SequenceStore allocates participant serial numbers from a durable counter.
type SequenceStore interface {
	// AllocateSerial atomically increments the counter and returns the new
	// serial. Two concurrent calls never observe the same value.
	AllocateSerial(ctx context.Context) (string, error)
	// PeekSerial returns the serial the next allocation would produce,
	// without mutating the counter.
	PeekSerial(ctx context.Context) (string, error)
}

// ApplicationStore persists participant applications.
type ApplicationStore interface {
	CreateApplication(ctx context.Context, application Application) error
	GetApplication(ctx context.Context, serialNumber string) (Application, error)
}

// PaymentLedger records payment events at most once per payment id.
type PaymentLedger interface {
	// RecordPaymentIfAbsent inserts the event unless a row with the same
	// payment id already exists. A duplicate is not an error: it returns
	// inserted = false and nil.
	RecordPaymentIfAbsent(ctx context.Context, event PaymentEvent) (inserted bool, err error)
	ListPaymentsBySerial(ctx context.Context, serialNumber string) ([]PaymentEvent, error)
}

// FormatSerial renders a counter value as a zero-padded serial number.
// Values above 9999 widen past four digits rather than wrapping.
func FormatSerial(value int64) string {
	return fmt.Sprintf("%04d", value)
}
