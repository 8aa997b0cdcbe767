package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClientValidatesConfig(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  Config
	}{
		{"missing key id", Config{KeySecret: "secret", BaseURL: "https://api.example.com"}},
		{"missing key secret", Config{KeyID: "key", BaseURL: "https://api.example.com"}},
		{"missing base url", Config{KeyID: "key", KeySecret: "secret"}},
	}
	for _, tc := range cases {
		if _, err := NewClient(tc.cfg); err == nil {
			t.Fatalf("%s: expected config error", tc.name)
		}
	}
}

func TestCreateOrderSendsCredentialsAndSerialNote(t *testing.T) {
	t.Parallel()

	var gotAuthUser, gotAuthPass string
	var gotReq orderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuthUser, gotAuthPass, _ = r.BasicAuth()
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode order request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Order{
			ID:       "order_9A33XWu170gUtm",
			Amount:   gotReq.Amount,
			Currency: gotReq.Currency,
			Receipt:  gotReq.Receipt,
			Status:   "created",
		})
	}))
	defer server.Close()

	client, err := NewClient(Config{KeyID: "rzp_key", KeySecret: "rzp_secret", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	order, err := client.CreateOrder(context.Background(), "0042", 30000, "INR")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ID != "order_9A33XWu170gUtm" {
		t.Fatalf("order id = %q, want order_9A33XWu170gUtm", order.ID)
	}
	if gotAuthUser != "rzp_key" || gotAuthPass != "rzp_secret" {
		t.Fatalf("basic auth = %q/%q, want rzp_key/rzp_secret", gotAuthUser, gotAuthPass)
	}
	if gotReq.Amount != 30000 || gotReq.Currency != "INR" {
		t.Fatalf("order request = %+v, want amount 30000 INR", gotReq)
	}
	if gotReq.Notes["form_serial_number"] != "0042" {
		t.Fatalf("serial note = %q, want 0042", gotReq.Notes["form_serial_number"])
	}
	if !strings.HasPrefix(gotReq.Receipt, "receipt_0042_") {
		t.Fatalf("receipt = %q, want receipt_0042_ prefix", gotReq.Receipt)
	}
	if len(gotReq.Receipt) > 40 {
		t.Fatalf("receipt %q exceeds 40 characters", gotReq.Receipt)
	}
}

func TestCreateOrderReceiptsAreUnique(t *testing.T) {
	t.Parallel()

	receipts := make(map[string]bool)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req orderRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		receipts[req.Receipt] = true
		_ = json.NewEncoder(w).Encode(Order{ID: "order_x", Receipt: req.Receipt})
	}))
	defer server.Close()

	client, err := NewClient(Config{KeyID: "k", KeySecret: "s", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := client.CreateOrder(context.Background(), "0001", 30000, "INR"); err != nil {
			t.Fatalf("create order: %v", err)
		}
	}
	if len(receipts) != 5 {
		t.Fatalf("distinct receipts = %d, want 5", len(receipts))
	}
}

func TestCreateOrderSurfacesProcessorError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"description":"Authentication failed"}}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{KeyID: "k", KeySecret: "wrong", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.CreateOrder(context.Background(), "0001", 30000, "INR")
	if err == nil {
		t.Fatal("expected error from 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("error %q should name the status code", err)
	}
}

func TestCreateOrderValidatesArguments(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Config{KeyID: "k", KeySecret: "s", BaseURL: "https://api.example.com"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.CreateOrder(context.Background(), "", 30000, "INR"); err == nil {
		t.Fatal("expected error for empty serial number")
	}
	if _, err := client.CreateOrder(context.Background(), "0001", 0, "INR"); err == nil {
		t.Fatal("expected error for non-positive amount")
	}
	if _, err := client.CreateOrder(context.Background(), "0001", 30000, ""); err == nil {
		t.Fatal("expected error for empty currency")
	}
}
