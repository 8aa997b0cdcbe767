package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quizrally/registration/internal/services/registration/storage"
)

// CreateApplication inserts one participant record. The serial number must
// come from a prior successful allocation; on insert failure the allocated
// serial stays consumed and is never reissued.
func (s *Store) CreateApplication(ctx context.Context, application storage.Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	serialNumber := strings.TrimSpace(application.SerialNumber)
	name := strings.TrimSpace(application.Name)
	email := strings.TrimSpace(application.Email)
	if serialNumber == "" {
		return fmt.Errorf("serial number is required")
	}
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if email == "" {
		return fmt.Errorf("email is required")
	}
	paymentStatus := application.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = storage.PaymentStatusPending
	}
	createdAt := application.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO applications (
		   serial_number,
		   name,
		   email,
		   p1_photo_url,
		   p2_photo_url,
		   p1_signature_url,
		   p2_signature_url,
		   payment_status,
		   created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		serialNumber,
		name,
		email,
		application.P1PhotoURL,
		application.P2PhotoURL,
		application.P1SignatureURL,
		application.P2SignatureURL,
		string(paymentStatus),
		toMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err, "applications", "serial_number") {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// GetApplication returns one participant record by serial number.
func (s *Store) GetApplication(ctx context.Context, serialNumber string) (storage.Application, error) {
	if err := ctx.Err(); err != nil {
		return storage.Application{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Application{}, fmt.Errorf("storage is not configured")
	}
	serialNumber = strings.TrimSpace(serialNumber)
	if serialNumber == "" {
		return storage.Application{}, fmt.Errorf("serial number is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT serial_number, name, email,
		        p1_photo_url, p2_photo_url, p1_signature_url, p2_signature_url,
		        payment_status, created_at
		   FROM applications
		  WHERE serial_number = ?`,
		serialNumber,
	)

	var application storage.Application
	var paymentStatus string
	var createdAt int64
	err := row.Scan(
		&application.SerialNumber,
		&application.Name,
		&application.Email,
		&application.P1PhotoURL,
		&application.P2PhotoURL,
		&application.P1SignatureURL,
		&application.P2SignatureURL,
		&paymentStatus,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Application{}, storage.ErrNotFound
		}
		return storage.Application{}, fmt.Errorf("get application: %w", err)
	}

	application.PaymentStatus = storage.PaymentStatus(paymentStatus)
	application.CreatedAt = fromMillis(createdAt)
	return application, nil
}
