package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tindahan/ledger-service/internal/domain"
	"github.com/tindahan/ledger-service/internal/logging"
)

// Client wraps the hosted-invoice provider API. It performs no retries;
// retry policy belongs to the caller.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type Customer struct {
	GivenNames   string `json:"given_names,omitempty"`
	Email        string `json:"email,omitempty"`
	MobileNumber string `json:"mobile_number,omitempty"`
}

type Item struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type Fee struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

type CreateInvoiceRequest struct {
	ExternalID      string                 `json:"external_id"`
	Amount          float64                `json:"amount"`
	Description     string                 `json:"description,omitempty"`
	PayerEmail      string                 `json:"payer_email,omitempty"`
	Customer        *Customer              `json:"customer,omitempty"`
	Items           []Item                 `json:"items,omitempty"`
	PaymentMethods  []string               `json:"payment_methods,omitempty"`
	Fees            []Fee                  `json:"fees,omitempty"`
	InvoiceDuration int                    `json:"invoice_duration,omitempty"`
	Metadata        domain.InvoiceMetadata `json:"metadata"`
}

type Invoice struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Status     string    `json:"status"`
	Amount     float64   `json:"amount"`
	InvoiceURL string    `json:"invoice_url"`
	ExpiryDate time.Time `json:"expiry_date"`
}

func (c *Client) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	var inv Invoice
	if err := c.do(ctx, http.MethodPost, "/v2/invoices", req, &inv); err != nil {
		return nil, fmt.Errorf("CreateInvoice: %w", err)
	}
	return &inv, nil
}

func (c *Client) GetInvoice(ctx context.Context, invoiceID string) (*Invoice, error) {
	var inv Invoice
	if err := c.do(ctx, http.MethodGet, "/v2/invoices/"+invoiceID, nil, &inv); err != nil {
		return nil, fmt.Errorf("GetInvoice: %w", err)
	}
	return &inv, nil
}

// ExpireInvoice is best-effort: an invoice that already reached a terminal
// state cannot be expired and the provider answers 400, which is fine here.
func (c *Client) ExpireInvoice(ctx context.Context, invoiceID string) error {
	err := c.do(ctx, http.MethodPost, "/v2/invoices/"+invoiceID+"/expire", nil, nil)
	if err != nil {
		var pe *apiError
		if errors.As(err, &pe) && pe.status == http.StatusBadRequest {
			logging.FromContext(ctx).Info("invoice already terminal, expire skipped",
				"invoice_id", invoiceID, "provider_status", pe.status)
			return nil
		}
		return fmt.Errorf("ExpireInvoice: %w", err)
	}
	return nil
}

func (c *Client) IsPaid(ctx context.Context, invoiceID string) (bool, error) {
	inv, err := c.GetInvoice(ctx, invoiceID)
	if err != nil {
		return false, fmt.Errorf("IsPaid: %w", err)
	}
	return domain.NormalizeStatus(inv.Status).Credits(), nil
}

type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("provider responded %d: %s", e.status, e.body)
}

func (e *apiError) Unwrap() error { return domain.ErrProvider }

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	log := logging.FromContext(ctx)

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("do: marshal: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("do: build request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, "")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do: %s %s: %v: %w", method, path, err, domain.ErrProvider)
	}
	defer resp.Body.Close()

	log.Info("provider response received",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &apiError{status: resp.StatusCode, body: string(respBody)}
	}

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return fmt.Errorf("do: decode: %v: %w", err, domain.ErrProvider)
		}
	}
	return nil
}
