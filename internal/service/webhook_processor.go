package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tindahan/ledger-service/internal/domain"
	"github.com/tindahan/ledger-service/internal/logging"
)

type processedGuard interface {
	CheckAndMark(ctx context.Context, invoiceID string) (bool, error)
	Release(ctx context.Context, invoiceID string) error
}

type storeIndexLookup interface {
	GetInvoiceStore(ctx context.Context, invoiceID string) (*domain.InvoiceIndexEntry, error)
}

type ledgerUpdater interface {
	Get(ctx context.Context, storeID, invoiceID string) (*domain.LedgerTransaction, error)
	Update(ctx context.Context, storeID, invoiceID string, u domain.TransactionUpdate) (*domain.LedgerTransaction, error)
}

type walletCreditor interface {
	Credit(ctx context.Context, storeID string, amount float64, invoiceID string, at time.Time) error
}

type orderLinker interface {
	IDsByNumber(ctx context.Context, orderNumber string) ([]string, error)
	SetPaymentStatus(ctx context.Context, orderID string, status domain.OrderPaymentStatus, method string) error
}

// WebhookProcessor applies a provider callback to the ledger, the wallet and
// the linked orders, exactly once per invoice id. The guard claims the
// invoice with a conditional write before any effect is applied; on a
// processing error the claim is released so the provider's retry gets another
// run. Deliveries for different invoices are independent.
type WebhookProcessor struct {
	processed processedGuard
	indexes   storeIndexLookup
	ledger    ledgerUpdater
	wallets   walletCreditor
	orders    orderLinker
}

func NewWebhookProcessor(processed processedGuard, indexes storeIndexLookup, ledger ledgerUpdater, wallets walletCreditor, orders orderLinker) *WebhookProcessor {
	return &WebhookProcessor{
		processed: processed,
		indexes:   indexes,
		ledger:    ledger,
		wallets:   wallets,
		orders:    orders,
	}
}

// WebhookPayload is the provider callback body. Metadata carries the
// commission snapshot taken at issuance so the event can be applied even when
// the index lookup fails.
type WebhookPayload struct {
	ID            string                  `json:"id"`
	ExternalID    string                  `json:"external_id"`
	Status        string                  `json:"status"`
	Amount        float64                 `json:"amount"`
	PaidAt        *time.Time              `json:"paid_at,omitempty"`
	Updated       *time.Time              `json:"updated,omitempty"`
	PaymentMethod string                  `json:"payment_method,omitempty"`
	Metadata      *domain.InvoiceMetadata `json:"metadata,omitempty"`
}

type WebhookOutcome struct {
	Idempotent    bool
	StoreResolved bool
	Credited      bool
	OrdersUpdated int
}

func (p *WebhookProcessor) Process(ctx context.Context, payload WebhookPayload) (*WebhookOutcome, error) {
	log := logging.FromContext(ctx).With("invoice_id", payload.ID)

	already, err := p.processed.CheckAndMark(ctx, payload.ID)
	if err != nil {
		return nil, fmt.Errorf("Process: %w", err)
	}
	if already {
		log.Info("webhook replay detected, skipping")
		return &WebhookOutcome{Idempotent: true}, nil
	}

	outcome, err := p.apply(ctx, payload)
	if err != nil {
		// Give the provider's retry a chance; duplicated partial effects are
		// corrected by reconciliation.
		if relErr := p.processed.Release(ctx, payload.ID); relErr != nil {
			log.Error("failed to release webhook claim", "error", relErr)
		}
		return nil, fmt.Errorf("Process: %w", err)
	}
	return outcome, nil
}

func (p *WebhookProcessor) apply(ctx context.Context, payload WebhookPayload) (*WebhookOutcome, error) {
	log := logging.FromContext(ctx).With("invoice_id", payload.ID)
	status := domain.NormalizeStatus(payload.Status)
	outcome := &WebhookOutcome{}

	storeID, orderNumber := p.resolveStore(ctx, payload)
	if storeID == "" {
		// Funds cannot be attributed; apply no money effects but keep the
		// event marked so the provider stops retrying something we cannot fix.
		log.Warn("webhook store unresolved, skipping ledger and wallet",
			"external_id", payload.ExternalID,
			"status", payload.Status,
		)
		n, err := p.linkOrders(ctx, orderNumber, status, payload.PaymentMethod)
		if err != nil {
			return nil, err
		}
		outcome.OrdersUpdated = n
		return outcome, nil
	}
	outcome.StoreResolved = true

	storeAmount, err := p.applyLedger(ctx, storeID, payload, status)
	if err != nil {
		return nil, err
	}

	// Credit on status alone. A zero store amount still writes the wallet's
	// per-invoice entry, so the audit trail records that the payment was seen.
	if status.Credits() {
		now := time.Now().UTC()
		if err := p.wallets.Credit(ctx, storeID, storeAmount, payload.ID, now); err != nil {
			return nil, err
		}
		outcome.Credited = true
		log.Info("wallet credited", "store_id", storeID, "amount", storeAmount)
	}

	n, err := p.linkOrders(ctx, orderNumber, status, payload.PaymentMethod)
	if err != nil {
		return nil, err
	}
	outcome.OrdersUpdated = n

	log.Info("webhook processed",
		"store_id", storeID,
		"status", status,
		"credited", outcome.Credited,
		"orders_updated", n,
	)
	return outcome, nil
}

// resolveStore prefers the metadata snapshot and falls back to the
// invoice->store index. Both empty means the funds cannot be attributed.
func (p *WebhookProcessor) resolveStore(ctx context.Context, payload WebhookPayload) (storeID, orderNumber string) {
	if payload.Metadata != nil {
		storeID = payload.Metadata.StoreID
		orderNumber = payload.Metadata.OrderNumber
	}
	if storeID != "" && orderNumber != "" {
		return storeID, orderNumber
	}

	entry, err := p.indexes.GetInvoiceStore(ctx, payload.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logging.FromContext(ctx).Warn("invoice index lookup failed",
				"invoice_id", payload.ID, "error", err)
		}
		return storeID, orderNumber
	}
	if storeID == "" {
		storeID = entry.StoreID
	}
	if orderNumber == "" {
		orderNumber = entry.OrderNumber
	}
	return storeID, orderNumber
}

// applyLedger pushes the provider-echoed fields onto the ledger row and
// returns the store's earning for a potential wallet credit. A missing row is
// a data-integrity warning, not a failure: metadata still lets the wallet be
// credited.
func (p *WebhookProcessor) applyLedger(ctx context.Context, storeID string, payload WebhookPayload, status domain.TransactionStatus) (float64, error) {
	log := logging.FromContext(ctx)

	update := domain.TransactionUpdate{Status: &status}
	if payload.PaidAt != nil {
		update.PaidAt = payload.PaidAt
	}
	if payload.PaymentMethod != "" {
		method := payload.PaymentMethod
		update.Method = &method
	}

	txn, err := p.ledger.Update(ctx, storeID, payload.ID, update)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn("webhook for unknown ledger row",
				"invoice_id", payload.ID, "store_id", storeID)
			return p.storeAmountFromMetadata(payload), nil
		}
		return 0, err
	}

	if payload.Metadata != nil && payload.Metadata.StoreAmount > 0 {
		return domain.RoundCurrency(payload.Metadata.StoreAmount), nil
	}
	return domain.RoundCurrency(txn.StoreAmount), nil
}

func (p *WebhookProcessor) storeAmountFromMetadata(payload WebhookPayload) float64 {
	if payload.Metadata == nil {
		return 0
	}
	if payload.Metadata.StoreAmount > 0 {
		return domain.RoundCurrency(payload.Metadata.StoreAmount)
	}
	return domain.StoreEarningsFor(payload.Amount, payload.Metadata.Commission)
}

func (p *WebhookProcessor) linkOrders(ctx context.Context, orderNumber string, status domain.TransactionStatus, method string) (int, error) {
	if orderNumber == "" {
		return 0, nil
	}
	mapped, ok := domain.OrderPaymentStatusFor(status)
	if !ok {
		return 0, nil
	}

	ids, err := p.orders.IDsByNumber(ctx, orderNumber)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := p.orders.SetPaymentStatus(ctx, id, mapped, method); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}
