package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tindahan/ledger-service/internal/domain"
	"github.com/tindahan/ledger-service/internal/logging"
	"github.com/tindahan/ledger-service/internal/provider"
)

type invoiceClient interface {
	CreateInvoice(ctx context.Context, req provider.CreateInvoiceRequest) (*provider.Invoice, error)
	ExpireInvoice(ctx context.Context, invoiceID string) error
}

type ledgerWriter interface {
	WriteDraft(ctx context.Context, txn *domain.LedgerTransaction) error
}

type indexWriter interface {
	SetInvoiceStore(ctx context.Context, invoiceID string, entry domain.InvoiceIndexEntry) error
	SetInvoiceOrder(ctx context.Context, invoiceID, orderID string) error
}

type rateResolver interface {
	RateFor(ctx context.Context, storeID string) (float64, error)
}

// IssuanceService creates a provider invoice for an order, snapshots the
// commission math into a PENDING ledger row and writes the lookup indexes the
// webhook path depends on.
type IssuanceService struct {
	rates           rateResolver
	invoices        invoiceClient
	ledger          ledgerWriter
	indexes         indexWriter
	invoiceDuration time.Duration
}

func NewIssuanceService(rates rateResolver, invoices invoiceClient, ledger ledgerWriter, indexes indexWriter, invoiceDuration time.Duration) *IssuanceService {
	return &IssuanceService{
		rates:           rates,
		invoices:        invoices,
		ledger:          ledger,
		indexes:         indexes,
		invoiceDuration: invoiceDuration,
	}
}

type IssueStore struct {
	ID    string
	Name  string
	Email string
}

type IssueCustomer struct {
	Name  string
	Email string
	Phone string
}

type IssueItem struct {
	Name     string
	Quantity int
	Price    float64
}

type IssueRequest struct {
	OrderNumber string
	OrderID     string
	Total       float64
	Method      string
	Store       IssueStore
	Customer    IssueCustomer
	Items       []IssueItem
}

type IssueResult struct {
	InvoiceID   string
	InvoiceURL  string
	ExpiryDate  time.Time
	Commission  float64
	StoreAmount float64
}

// Channel sets offered on the hosted invoice page per requested method.
// "gcash" and "paymaya" pin the invoice to that channel; "online" leaves the
// full set open.
var methodChannels = map[string][]string{
	"gcash":   {"GCASH"},
	"paymaya": {"PAYMAYA"},
	"online":  {"CREDIT_CARD", "GCASH", "PAYMAYA", "BANK_TRANSFER"},
}

func (s *IssuanceService) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	if req.Total <= 0 {
		return nil, fmt.Errorf("Issue: total must be greater than zero: %w", domain.ErrValidation)
	}
	if req.OrderNumber == "" {
		return nil, fmt.Errorf("Issue: order number is required: %w", domain.ErrValidation)
	}
	if req.Store.ID == "" {
		return nil, fmt.Errorf("Issue: store id is required: %w", domain.ErrValidation)
	}
	channels, ok := methodChannels[strings.ToLower(req.Method)]
	if !ok {
		return nil, fmt.Errorf("Issue: unsupported payment method %q: %w", req.Method, domain.ErrValidation)
	}

	rate, err := s.rates.RateFor(ctx, req.Store.ID)
	if err != nil {
		return nil, fmt.Errorf("Issue: %w", err)
	}

	total := domain.RoundCurrency(req.Total)
	commission := domain.CommissionFor(total, rate)
	storeAmount := domain.StoreEarningsFor(total, commission)

	meta := domain.InvoiceMetadata{
		StoreID:        req.Store.ID,
		OrderNumber:    req.OrderNumber,
		OrderID:        req.OrderID,
		Commission:     commission,
		CommissionRate: rate,
		StoreAmount:    storeAmount,
	}

	items := make([]provider.Item, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, provider.Item{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}

	inv, err := s.invoices.CreateInvoice(ctx, provider.CreateInvoiceRequest{
		ExternalID:  "order-" + req.OrderNumber,
		Amount:      total,
		Description: fmt.Sprintf("Order %s - %s", req.OrderNumber, req.Store.Name),
		PayerEmail:  req.Customer.Email,
		Customer: &provider.Customer{
			GivenNames:   req.Customer.Name,
			Email:        req.Customer.Email,
			MobileNumber: req.Customer.Phone,
		},
		Items:           items,
		PaymentMethods:  channels,
		Fees:            []provider.Fee{{Type: "platform_fee", Value: commission}},
		InvoiceDuration: int(s.invoiceDuration.Seconds()),
		Metadata:        meta,
	})
	if err != nil {
		return nil, fmt.Errorf("Issue: %w", err)
	}

	log := logging.FromContext(ctx)

	draft := &domain.LedgerTransaction{
		InvoiceID:      inv.ID,
		StoreID:        req.Store.ID,
		OrderNumber:    req.OrderNumber,
		OrderID:        req.OrderID,
		Type:           domain.TypeSale,
		Amount:         total,
		Commission:     commission,
		CommissionRate: rate,
		StoreAmount:    storeAmount,
		Method:         strings.ToLower(req.Method),
		Status:         domain.NormalizeStatus(inv.Status),
		InvoiceURL:     inv.InvoiceURL,
		ExpiryDate:     &inv.ExpiryDate,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.ledger.WriteDraft(ctx, draft); err != nil {
		// The provider invoice exists but the ledger does not know about it.
		// There is no compensating cancel; this log line is the alert signal.
		log.Error("invoice created but ledger draft write failed",
			"invoice_id", inv.ID,
			"store_id", req.Store.ID,
			"order_number", req.OrderNumber,
			"error", err,
		)
		return nil, fmt.Errorf("Issue: %w", err)
	}

	entry := domain.InvoiceIndexEntry{StoreID: req.Store.ID, OrderNumber: req.OrderNumber}
	if err := s.indexes.SetInvoiceStore(ctx, inv.ID, entry); err != nil {
		log.Error("invoice issued but store index write failed",
			"invoice_id", inv.ID,
			"store_id", req.Store.ID,
			"error", err,
		)
		return nil, fmt.Errorf("Issue: %w", err)
	}
	if req.OrderID != "" {
		if err := s.indexes.SetInvoiceOrder(ctx, inv.ID, req.OrderID); err != nil {
			log.Error("invoice issued but order index write failed",
				"invoice_id", inv.ID,
				"order_id", req.OrderID,
				"error", err,
			)
			return nil, fmt.Errorf("Issue: %w", err)
		}
	}

	log.Info("invoice issued",
		"invoice_id", inv.ID,
		"store_id", req.Store.ID,
		"order_number", req.OrderNumber,
		"amount", total,
		"commission", commission,
		"store_amount", storeAmount,
	)

	return &IssueResult{
		InvoiceID:   inv.ID,
		InvoiceURL:  inv.InvoiceURL,
		ExpiryDate:  inv.ExpiryDate,
		Commission:  commission,
		StoreAmount: storeAmount,
	}, nil
}
