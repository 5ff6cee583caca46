package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tindahan/ledger-service/internal/domain"
	"github.com/tindahan/ledger-service/internal/pathstore"
)

// LedgerRepository owns the append-mostly per-store transaction log. Rows are
// keyed by invoice id within a store scope and transition status exactly once;
// after settlement the monetary fields are frozen.
type LedgerRepository struct {
	store pathstore.Store
}

func NewLedgerRepository(store pathstore.Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

func (r *LedgerRepository) Get(ctx context.Context, storeID, invoiceID string) (*domain.LedgerTransaction, error) {
	var txn domain.LedgerTransaction
	err := r.store.Get(ctx, transactionPath(storeID, invoiceID), &txn)
	if errors.Is(err, pathstore.ErrPathNotFound) {
		return nil, fmt.Errorf("Get: transaction %s: %w", invoiceID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &txn, nil
}

// WriteDraft records a freshly issued invoice. Reusing an invoice id for a
// different order is a logic error upstream, never a legitimate race: invoice
// ids are provider-generated and unique.
func (r *LedgerRepository) WriteDraft(ctx context.Context, txn *domain.LedgerTransaction) error {
	existing, err := r.Get(ctx, txn.StoreID, txn.InvoiceID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("WriteDraft: %w", err)
	}
	if existing != nil && existing.OrderNumber != txn.OrderNumber {
		return fmt.Errorf("WriteDraft: invoice %s belongs to order %s: %w",
			txn.InvoiceID, existing.OrderNumber, domain.ErrConflict)
	}

	if err := r.store.Set(ctx, transactionPath(txn.StoreID, txn.InvoiceID), txn); err != nil {
		return fmt.Errorf("WriteDraft: %w", err)
	}
	return nil
}

// Update applies a partial update to a ledger row. Monetary and identity
// fields may only change while the row is still PENDING; anything else is an
// attempt to rewrite settled history and is rejected.
func (r *LedgerRepository) Update(ctx context.Context, storeID, invoiceID string, u domain.TransactionUpdate) (*domain.LedgerTransaction, error) {
	current, err := r.Get(ctx, storeID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	if current.Status != domain.StatusPending && u.TouchesMoney() {
		return nil, fmt.Errorf("Update: transaction %s is %s: %w",
			invoiceID, current.Status, domain.ErrImmutableTransaction)
	}

	fields := map[string]any{}
	if u.Status != nil {
		fields["status"] = *u.Status
		current.Status = *u.Status
	}
	if u.PaidAt != nil {
		fields["paidAt"] = *u.PaidAt
		current.PaidAt = u.PaidAt
	}
	if u.Method != nil {
		fields["method"] = *u.Method
		current.Method = *u.Method
	}
	if u.InvoiceURL != nil {
		fields["invoiceUrl"] = *u.InvoiceURL
		current.InvoiceURL = *u.InvoiceURL
	}
	if u.ExpiryDate != nil {
		fields["expiryDate"] = *u.ExpiryDate
		current.ExpiryDate = u.ExpiryDate
	}
	if u.Amount != nil {
		fields["amount"] = *u.Amount
		current.Amount = *u.Amount
	}
	if u.Commission != nil {
		fields["commission"] = *u.Commission
		current.Commission = *u.Commission
	}
	if u.CommissionRate != nil {
		fields["commissionRate"] = *u.CommissionRate
		current.CommissionRate = *u.CommissionRate
	}
	if u.StoreAmount != nil {
		fields["storeAmount"] = *u.StoreAmount
		current.StoreAmount = *u.StoreAmount
	}
	if u.PreviousInvoiceID != nil {
		fields["previousInvoiceId"] = *u.PreviousInvoiceID
		current.PreviousInvoiceID = *u.PreviousInvoiceID
	}
	if len(fields) == 0 && u.InvoiceID == nil {
		return current, nil
	}

	// A replacement re-keys the row under the new invoice id so later
	// webhooks, which arrive keyed by invoice id, can find it.
	if u.InvoiceID != nil && *u.InvoiceID != invoiceID {
		current.InvoiceID = *u.InvoiceID
		if err := r.store.Set(ctx, transactionPath(storeID, current.InvoiceID), current); err != nil {
			return nil, fmt.Errorf("Update: rekey: %w", err)
		}
		if err := r.store.Delete(ctx, transactionPath(storeID, invoiceID)); err != nil {
			return nil, fmt.Errorf("Update: drop old key: %w", err)
		}
		return current, nil
	}

	if err := r.store.Merge(ctx, transactionPath(storeID, invoiceID), fields); err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}
	return current, nil
}

// AddAdjustment appends a correction row referencing the source transaction.
// The source row itself is never touched.
func (r *LedgerRepository) AddAdjustment(ctx context.Context, storeID, sourceInvoiceID string, delta float64, reason string) (*domain.LedgerTransaction, error) {
	adj := &domain.LedgerTransaction{
		InvoiceID:             "ADJ-" + uuid.NewString(),
		StoreID:               storeID,
		Type:                  domain.TypeAdjustment,
		Amount:                0,
		StoreAmount:           domain.RoundCurrency(delta),
		Status:                domain.StatusSettled,
		AdjustedFromInvoiceID: sourceInvoiceID,
		Reason:                reason,
		CreatedAt:             time.Now().UTC(),
	}

	if err := r.store.Set(ctx, transactionPath(storeID, adj.InvoiceID), adj); err != nil {
		return nil, fmt.Errorf("AddAdjustment: %w", err)
	}
	return adj, nil
}

func (r *LedgerRepository) ListByStore(ctx context.Context, storeID string) ([]domain.LedgerTransaction, error) {
	ids, err := r.store.Children(ctx, transactionsPath(storeID))
	if err != nil {
		return nil, fmt.Errorf("ListByStore: %w", err)
	}

	txns := make([]domain.LedgerTransaction, 0, len(ids))
	for _, id := range ids {
		txn, err := r.Get(ctx, storeID, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("ListByStore: %w", err)
		}
		txns = append(txns, *txn)
	}
	return txns, nil
}

// StoreIDs lists every store that has at least one ledger transaction.
func (r *LedgerRepository) StoreIDs(ctx context.Context) ([]string, error) {
	ids, err := r.store.Children(ctx, ledgerStoresPath)
	if err != nil {
		return nil, fmt.Errorf("StoreIDs: %w", err)
	}
	return ids, nil
}
