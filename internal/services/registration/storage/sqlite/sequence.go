package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quizrally/registration/internal/services/registration/storage"
)

// allocateAttempts bounds how often an allocation retries after losing the
// database lock. Contention beyond this is surfaced to the caller.
const allocateAttempts = 3

// AllocateSerial increments the durable counter and returns the new serial.
//
// The read and the increment happen in one UPDATE ... RETURNING statement so
// two concurrent callers can never both observe the same previous value. The
// counter is never cached in process memory: every allocation round-trips to
// the database.
func (s *Store) AllocateSerial(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s == nil || s.sqlDB == nil {
		return "", fmt.Errorf("storage is not configured")
	}

	var lastErr error
	for attempt := 0; attempt < allocateAttempts; attempt++ {
		var value int64
		err := s.sqlDB.QueryRowContext(
			ctx,
			`UPDATE serial_counter
			    SET last_serial_number = last_serial_number + 1
			  WHERE id = 1
			RETURNING last_serial_number`,
		).Scan(&value)
		if err == nil {
			return storage.FormatSerial(value), nil
		}
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("serial counter row is missing")
		}
		if !isBusy(err) {
			return "", fmt.Errorf("allocate serial: %w", err)
		}
		lastErr = err
	}
	return "", fmt.Errorf("allocate serial after %d attempts: %w: %w", allocateAttempts, storage.ErrRetryExhausted, lastErr)
}

// PeekSerial returns the serial the next allocation would produce. Display
// only: it never mutates the counter.
func (s *Store) PeekSerial(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s == nil || s.sqlDB == nil {
		return "", fmt.Errorf("storage is not configured")
	}

	var value int64
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT last_serial_number + 1 FROM serial_counter WHERE id = 1`,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("serial counter row is missing")
		}
		return "", fmt.Errorf("peek serial: %w", err)
	}
	return storage.FormatSerial(value), nil
}
