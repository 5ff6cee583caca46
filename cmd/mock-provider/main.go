package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tindahan/ledger-service/internal/logging"
)

// Stand-in for the hosted invoice provider during local development.
// Invoices live in memory; POST /simulate/paid/{id} flips one to PAID and
// fires the callback at CALLBACK_URL the way the real provider would.

type invoice struct {
	ID            string         `json:"id"`
	ExternalID    string         `json:"external_id"`
	Status        string         `json:"status"`
	Amount        float64        `json:"amount"`
	InvoiceURL    string         `json:"invoice_url"`
	ExpiryDate    time.Time      `json:"expiry_date"`
	PaymentMethod string         `json:"payment_method,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

type server struct {
	mu       sync.Mutex
	invoices map[string]*invoice

	callbackURL   string
	callbackToken string
}

func main() {
	logging.Init("mock-provider", "info", os.Getenv("APP_ENV"))

	s := &server{
		invoices:      make(map[string]*invoice),
		callbackURL:   envOr("CALLBACK_URL", "http://api:8080/api/v1/webhooks/invoice"),
		callbackToken: envOr("CALLBACK_TOKEN", "dev-callback-token"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /v2/invoices", s.createInvoice)
	mux.HandleFunc("GET /v2/invoices/{id}", s.getInvoice)
	mux.HandleFunc("POST /v2/invoices/{id}/expire", s.expireInvoice)
	mux.HandleFunc("POST /simulate/paid/{id}", s.simulatePaid)

	addr := ":" + envOr("PORT", "8081")
	slog.Info("mock provider started", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func (s *server) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExternalID      string         `json:"external_id"`
		Amount          float64        `json:"amount"`
		InvoiceDuration int            `json:"invoice_duration"`
		Metadata        map[string]any `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	duration := req.InvoiceDuration
	if duration <= 0 {
		duration = 86400
	}

	inv := &invoice{
		ID:         "inv-" + uuid.NewString(),
		ExternalID: req.ExternalID,
		Status:     "PENDING",
		Amount:     req.Amount,
		ExpiryDate: time.Now().Add(time.Duration(duration) * time.Second),
		Metadata:   req.Metadata,
	}
	inv.InvoiceURL = fmt.Sprintf("https://checkout.mock-provider.test/%s", inv.ID)

	s.mu.Lock()
	s.invoices[inv.ID] = inv
	s.mu.Unlock()

	slog.Info("invoice created", "invoice_id", inv.ID, "external_id", inv.ExternalID, "amount", inv.Amount)
	writeJSON(w, http.StatusOK, inv)
}

func (s *server) getInvoice(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	inv, ok := s.invoices[r.PathValue("id")]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "invoice not found"})
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *server) expireInvoice(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "invoice not found"})
		return
	}
	if inv.Status != "PENDING" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invoice is not pending"})
		return
	}

	inv.Status = "EXPIRED"
	slog.Info("invoice expired", "invoice_id", inv.ID)
	writeJSON(w, http.StatusOK, inv)
}

func (s *server) simulatePaid(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	inv, ok := s.invoices[r.PathValue("id")]
	if ok {
		inv.Status = "PAID"
		inv.PaymentMethod = "GCASH"
	}
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "invoice not found"})
		return
	}

	now := time.Now()
	payload := map[string]any{
		"id":             inv.ID,
		"external_id":    inv.ExternalID,
		"status":         inv.Status,
		"amount":         inv.Amount,
		"paid_at":        now,
		"updated":        now,
		"payment_method": inv.PaymentMethod,
		"metadata":       inv.Metadata,
	}

	if err := s.fireCallback(payload); err != nil {
		slog.Error("callback delivery failed", "invoice_id", inv.ID, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "callback delivery failed"})
		return
	}

	slog.Info("invoice paid, callback delivered", "invoice_id", inv.ID)
	writeJSON(w, http.StatusOK, inv)
}

func (s *server) fireCallback(payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("fireCallback: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.callbackURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("fireCallback: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-callback-token", s.callbackToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("fireCallback: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("fireCallback: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
