package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tindahan/ledger-service/internal/domain"
	"github.com/tindahan/ledger-service/internal/logging"
	"github.com/tindahan/ledger-service/internal/provider"
)

type ledgerAdmin interface {
	Get(ctx context.Context, storeID, invoiceID string) (*domain.LedgerTransaction, error)
	Update(ctx context.Context, storeID, invoiceID string, u domain.TransactionUpdate) (*domain.LedgerTransaction, error)
	AddAdjustment(ctx context.Context, storeID, sourceInvoiceID string, delta float64, reason string) (*domain.LedgerTransaction, error)
}

type indexLookup interface {
	GetInvoiceStore(ctx context.Context, invoiceID string) (*domain.InvoiceIndexEntry, error)
	SetInvoiceStore(ctx context.Context, invoiceID string, entry domain.InvoiceIndexEntry) error
	SetInvoiceOrder(ctx context.Context, invoiceID, orderID string) error
}

// TransactionService covers the admin-triggered corrections: post-hoc
// adjustments to settled transactions and replacement of still-pending
// invoices. Both are low-frequency, single-operator operations.
type TransactionService struct {
	ledger          ledgerAdmin
	indexes         indexLookup
	invoices        invoiceClient
	invoiceDuration time.Duration
}

func NewTransactionService(ledger ledgerAdmin, indexes indexLookup, invoices invoiceClient, invoiceDuration time.Duration) *TransactionService {
	return &TransactionService{
		ledger:          ledger,
		indexes:         indexes,
		invoices:        invoices,
		invoiceDuration: invoiceDuration,
	}
}

type AdjustmentResult struct {
	AdjustmentID string
	StoreID      string
	Delta        float64
}

// Adjust records a signed correction against a transaction's store earnings
// without touching the original row.
func (s *TransactionService) Adjust(ctx context.Context, invoiceID string, delta float64, reason string) (*AdjustmentResult, error) {
	if delta == 0 {
		return nil, fmt.Errorf("Adjust: %w", domain.ErrZeroAdjustment)
	}

	entry, err := s.indexes.GetInvoiceStore(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("Adjust: %w", err)
	}
	if _, err := s.ledger.Get(ctx, entry.StoreID, invoiceID); err != nil {
		return nil, fmt.Errorf("Adjust: %w", err)
	}

	adj, err := s.ledger.AddAdjustment(ctx, entry.StoreID, invoiceID, delta, reason)
	if err != nil {
		return nil, fmt.Errorf("Adjust: %w", err)
	}

	logging.FromContext(ctx).Info("adjustment recorded",
		"adjustment_id", adj.InvoiceID,
		"source_invoice_id", invoiceID,
		"store_id", entry.StoreID,
		"delta", adj.StoreAmount,
		"reason", reason,
	)

	return &AdjustmentResult{
		AdjustmentID: adj.InvoiceID,
		StoreID:      entry.StoreID,
		Delta:        adj.StoreAmount,
	}, nil
}

type ReplaceRequest struct {
	NewCommissionRate   *float64
	NewCommissionAmount *float64
}

// ReplacePending expires a not-yet-paid invoice at the provider and swaps the
// ledger row over to a fresh invoice with recomputed commission. Only a
// PENDING row may be replaced; a paid or settled one is financial history.
func (s *TransactionService) ReplacePending(ctx context.Context, invoiceID string, req ReplaceRequest) (*IssueResult, error) {
	if req.NewCommissionRate == nil && req.NewCommissionAmount == nil {
		return nil, fmt.Errorf("ReplacePending: new rate or amount is required: %w", domain.ErrValidation)
	}

	entry, err := s.indexes.GetInvoiceStore(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("ReplacePending: %w", err)
	}
	txn, err := s.ledger.Get(ctx, entry.StoreID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("ReplacePending: %w", err)
	}
	if txn.Status != domain.StatusPending {
		return nil, fmt.Errorf("ReplacePending: invoice %s is %s: %w",
			invoiceID, txn.Status, domain.ErrInvalidState)
	}

	var rate, commission float64
	switch {
	case req.NewCommissionRate != nil:
		rate = *req.NewCommissionRate
		if err := validateRate(rate); err != nil {
			return nil, fmt.Errorf("ReplacePending: %w", err)
		}
		commission = domain.CommissionFor(txn.Amount, rate)
	default:
		commission = domain.RoundCurrency(*req.NewCommissionAmount)
		if commission < 0 || commission > txn.Amount {
			return nil, fmt.Errorf("ReplacePending: commission must be within [0, amount]: %w", domain.ErrValidation)
		}
		rate, _ = decimal.NewFromFloat(commission).
			Div(decimal.NewFromFloat(txn.Amount)).
			Round(6).
			Float64()
	}
	storeAmount := domain.StoreEarningsFor(txn.Amount, commission)

	log := logging.FromContext(ctx)

	// Best effort; the old invoice may have expired on its own already.
	if err := s.invoices.ExpireInvoice(ctx, invoiceID); err != nil {
		log.Warn("failed to expire replaced invoice", "invoice_id", invoiceID, "error", err)
	}

	meta := domain.InvoiceMetadata{
		StoreID:        entry.StoreID,
		OrderNumber:    txn.OrderNumber,
		OrderID:        txn.OrderID,
		Commission:     commission,
		CommissionRate: rate,
		StoreAmount:    storeAmount,
	}
	inv, err := s.invoices.CreateInvoice(ctx, provider.CreateInvoiceRequest{
		ExternalID:      fmt.Sprintf("order-%s-r%s", txn.OrderNumber, uuid.NewString()[:8]),
		Amount:          txn.Amount,
		Description:     fmt.Sprintf("Order %s (reissued)", txn.OrderNumber),
		PaymentMethods:  methodChannels["online"],
		Fees:            []provider.Fee{{Type: "platform_fee", Value: commission}},
		InvoiceDuration: int(s.invoiceDuration.Seconds()),
		Metadata:        meta,
	})
	if err != nil {
		return nil, fmt.Errorf("ReplacePending: %w", err)
	}

	update := domain.TransactionUpdate{
		InvoiceID:         &inv.ID,
		PreviousInvoiceID: &invoiceID,
		Commission:        &commission,
		CommissionRate:    &rate,
		StoreAmount:       &storeAmount,
		InvoiceURL:        &inv.InvoiceURL,
		ExpiryDate:        &inv.ExpiryDate,
	}
	if _, err := s.ledger.Update(ctx, entry.StoreID, invoiceID, update); err != nil {
		return nil, fmt.Errorf("ReplacePending: %w", err)
	}

	if err := s.indexes.SetInvoiceStore(ctx, inv.ID, *entry); err != nil {
		return nil, fmt.Errorf("ReplacePending: %w", err)
	}
	if txn.OrderID != "" {
		if err := s.indexes.SetInvoiceOrder(ctx, inv.ID, txn.OrderID); err != nil {
			return nil, fmt.Errorf("ReplacePending: %w", err)
		}
	}

	log.Info("pending invoice replaced",
		"old_invoice_id", invoiceID,
		"new_invoice_id", inv.ID,
		"store_id", entry.StoreID,
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
