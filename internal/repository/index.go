package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tindahan/ledger-service/internal/domain"
	"github.com/tindahan/ledger-service/internal/pathstore"
)

// IndexRepository maintains the secondary lookups written alongside invoice
// creation. Webhooks arrive keyed by invoice id with no store context, so the
// invoice->store entry must exist before the provider can plausibly call back.
type IndexRepository struct {
	store pathstore.Store
}

func NewIndexRepository(store pathstore.Store) *IndexRepository {
	return &IndexRepository{store: store}
}

func (r *IndexRepository) SetInvoiceStore(ctx context.Context, invoiceID string, entry domain.InvoiceIndexEntry) error {
	if err := r.store.Set(ctx, invoiceStoreIndexPath(invoiceID), entry); err != nil {
		return fmt.Errorf("SetInvoiceStore: %w", err)
	}
	return nil
}

func (r *IndexRepository) GetInvoiceStore(ctx context.Context, invoiceID string) (*domain.InvoiceIndexEntry, error) {
	var entry domain.InvoiceIndexEntry
	err := r.store.Get(ctx, invoiceStoreIndexPath(invoiceID), &entry)
	if errors.Is(err, pathstore.ErrPathNotFound) {
		return nil, fmt.Errorf("GetInvoiceStore: invoice %s: %w", invoiceID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetInvoiceStore: %w", err)
	}
	return &entry, nil
}

func (r *IndexRepository) SetInvoiceOrder(ctx context.Context, invoiceID, orderID string) error {
	if err := r.store.Set(ctx, invoiceOrderIndexPath(invoiceID), map[string]string{"orderId": orderID}); err != nil {
		return fmt.Errorf("SetInvoiceOrder: %w", err)
	}
	return nil
}
