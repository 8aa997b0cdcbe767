package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/quizrally/registration/internal/services/registration/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "registration.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

// TestOpenConfiguresConnectionPragmas pins the DSN's pragma effects: the
// driver only honors _pragma=name(value) parameters, and without the busy
// timeout concurrent writers fail with SQLITE_BUSY instead of waiting.
func TestOpenConfiguresConnectionPragmas(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)

	var journalMode string
	if err := store.sqlDB.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Fatalf("journal_mode = %q, want wal", journalMode)
	}

	var busyTimeout int64
	if err := store.sqlDB.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout); err != nil {
		t.Fatalf("query busy_timeout: %v", err)
	}
	if busyTimeout != 5000 {
		t.Fatalf("busy_timeout = %d, want 5000", busyTimeout)
	}

	var foreignKeys int64
	if err := store.sqlDB.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if foreignKeys != 1 {
		t.Fatalf("foreign_keys = %d, want 1", foreignKeys)
	}
}

func TestCreateGetApplicationRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.August, 30, 11, 20, 0, 0, time.UTC)
	input := storage.Application{
		SerialNumber:   "0001",
		Name:           "Asha Pillai",
		Email:          "asha@example.com",
		P1PhotoURL:     "https://files.example.com/files/photos/0001_p1_photo.jpg",
		P1SignatureURL: "https://files.example.com/files/signatures/0001_p1_signature.jpg",
		PaymentStatus:  storage.PaymentStatusPending,
		CreatedAt:      now,
	}
	if err := store.CreateApplication(context.Background(), input); err != nil {
		t.Fatalf("create application: %v", err)
	}

	got, err := store.GetApplication(context.Background(), "0001")
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if got.Name != input.Name {
		t.Fatalf("name = %q, want %q", got.Name, input.Name)
	}
	if got.Email != input.Email {
		t.Fatalf("email = %q, want %q", got.Email, input.Email)
	}
	if got.P1PhotoURL != input.P1PhotoURL {
		t.Fatalf("p1 photo url = %q, want %q", got.P1PhotoURL, input.P1PhotoURL)
	}
	if got.PaymentStatus != storage.PaymentStatusPending {
		t.Fatalf("payment status = %q, want %q", got.PaymentStatus, storage.PaymentStatusPending)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created at = %v, want %v", got.CreatedAt, now)
	}
}

func TestCreateApplicationReturnsAlreadyExistsOnDuplicateSerial(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	input := storage.Application{
		SerialNumber: "0007",
		Name:         "Ravi Kumar",
		Email:        "ravi@example.com",
	}
	if err := store.CreateApplication(context.Background(), input); err != nil {
		t.Fatalf("create initial application: %v", err)
	}
	err := store.CreateApplication(context.Background(), input)
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate create error = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestGetApplicationNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.GetApplication(context.Background(), "9999")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get missing application error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestCreateApplicationDefaultsStatusAndTimestamp(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if err := store.CreateApplication(context.Background(), storage.Application{
		SerialNumber: "0012",
		Name:         "Meera Nair",
		Email:        "meera@example.com",
	}); err != nil {
		t.Fatalf("create application: %v", err)
	}

	got, err := store.GetApplication(context.Background(), "0012")
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if got.PaymentStatus != storage.PaymentStatusPending {
		t.Fatalf("payment status = %q, want %q", got.PaymentStatus, storage.PaymentStatusPending)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected created at to be defaulted")
	}
}
