package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tindahan/ledger-service/internal/domain"
	"github.com/tindahan/ledger-service/internal/pathstore"
)

func seedLedgerTxn(t *testing.T, repo *LedgerRepository, storeID, invoiceID string, status domain.TransactionStatus) *domain.LedgerTransaction {
	t.Helper()

	txn := &domain.LedgerTransaction{
		InvoiceID:      invoiceID,
		StoreID:        storeID,
		OrderNumber:    "ORD-" + invoiceID,
		Type:           domain.TypeSale,
		Amount:         100.00,
		Commission:     5.00,
		CommissionRate: 0.05,
		StoreAmount:    95.00,
		Status:         domain.StatusPending,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, repo.WriteDraft(context.Background(), txn))

	if status != domain.StatusPending {
		_, err := repo.Update(context.Background(), storeID, invoiceID, domain.TransactionUpdate{Status: &status})
		require.NoError(t, err)
	}
	return txn
}

func TestLedgerRepositoryGet(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository(pathstore.NewMemoryStore())

	seedLedgerTxn(t, repo, "s1", "inv-1", domain.StatusPending)

	got, err := repo.Get(ctx, "s1", "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "inv-1", got.InvoiceID)
	assert.Equal(t, 95.00, got.StoreAmount)

	_, err = repo.Get(ctx, "s1", "inv-nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.Get(ctx, "s2", "inv-1")
	assert.ErrorIs(t, err, domain.ErrNotFound, "rows are scoped per store")
}

func TestLedgerRepositoryWriteDraftConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository(pathstore.NewMemoryStore())

	seedLedgerTxn(t, repo, "s1", "inv-1", domain.StatusPending)

	clash := &domain.LedgerTransaction{
		InvoiceID:   "inv-1",
		StoreID:     "s1",
		OrderNumber: "ORD-other",
		Status:      domain.StatusPending,
	}
	err := repo.WriteDraft(ctx, clash)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Rewriting the same invoice for the same order is allowed.
	same := &domain.LedgerTransaction{
		InvoiceID:   "inv-1",
		StoreID:     "s1",
		OrderNumber: "ORD-inv-1",
		Amount:      100.00,
		Status:      domain.StatusPending,
	}
	assert.NoError(t, repo.WriteDraft(ctx, same))
}

func TestLedgerRepositoryUpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository(pathstore.NewMemoryStore())

	seedLedgerTxn(t, repo, "s1", "inv-1", domain.StatusPending)

	paid := domain.StatusPaid
	paidAt := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	method := "GCASH"
	got, err := repo.Update(ctx, "s1", "inv-1", domain.TransactionUpdate{
		Status: &paid,
		PaidAt: &paidAt,
		Method: &method,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, got.Status)

	stored, err := repo.Get(ctx, "s1", "inv-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, stored.Status)
	require.NotNil(t, stored.PaidAt)
	assert.True(t, paidAt.Equal(*stored.PaidAt))
	assert.Equal(t, "GCASH", stored.Method)
	assert.Equal(t, 95.00, stored.StoreAmount, "money fields untouched")
}

func TestLedgerRepositoryImmutableAfterSettlement(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository(pathstore.NewMemoryStore())

	seedLedgerTxn(t, repo, "s1", "inv-1", domain.StatusPaid)

	amount := 50.0
	_, err := repo.Update(ctx, "s1", "inv-1", domain.TransactionUpdate{Amount: &amount})
	assert.ErrorIs(t, err, domain.ErrImmutableTransaction)

	newID := "inv-2"
	_, err = repo.Update(ctx, "s1", "inv-1", domain.TransactionUpdate{InvoiceID: &newID})
	assert.ErrorIs(t, err, domain.ErrImmutableTransaction)

	// Status-only transitions stay legal on a paid row.
	settled := domain.StatusSettled
	_, err = repo.Update(ctx, "s1", "inv-1", domain.TransactionUpdate{Status: &settled})
	assert.NoError(t, err)

	stored, err := repo.Get(ctx, "s1", "inv-1")
	require.NoError(t, err)
	assert.Equal(t, 100.00, stored.Amount, "settled amounts never change")
}

func TestLedgerRepositoryRekeyOnReplacement(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository(pathstore.NewMemoryStore())

	seedLedgerTxn(t, repo, "s1", "inv-1", domain.StatusPending)

	newID := "inv-2"
	oldID := "inv-1"
	commission := 3.00
	storeAmount := 97.00
	got, err := repo.Update(ctx, "s1", "inv-1", domain.TransactionUpdate{
		InvoiceID:         &newID,
		PreviousInvoiceID: &oldID,
		Commission:        &commission,
		StoreAmount:       &storeAmount,
	})
	require.NoError(t, err)
	assert.Equal(t, "inv-2", got.InvoiceID)

	// The row now lives under the new invoice id; webhooks arrive keyed by it.
	stored, err := repo.Get(ctx, "s1", "inv-2")
	require.NoError(t, err)
	assert.Equal(t, "inv-1", stored.PreviousInvoiceID)
	assert.Equal(t, 3.00, stored.Commission)
	assert.Equal(t, 97.00, stored.StoreAmount)
	assert.Equal(t, "ORD-inv-1", stored.OrderNumber, "order linkage survives the re-key")

	_, err = repo.Get(ctx, "s1", "inv-1")
	assert.ErrorIs(t, err, domain.ErrNotFound, "old key is gone")
}

func TestLedgerRepositoryAddAdjustment(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository(pathstore.NewMemoryStore())

	seedLedgerTxn(t, repo, "s1", "inv-1", domain.StatusSettled)

	adj, err := repo.AddAdjustment(ctx, "s1", "inv-1", -12.345, "damaged item refund")
	require.NoError(t, err)
	assert.Contains(t, adj.InvoiceID, "ADJ-")
	assert.Equal(t, domain.TypeAdjustment, adj.Type)
	assert.Equal(t, domain.StatusSettled, adj.Status)
	assert.Equal(t, -12.35, adj.StoreAmount, "delta is rounded to cents")
	assert.Equal(t, 0.0, adj.Amount)
	assert.Equal(t, "inv-1", adj.AdjustedFromInvoiceID)
	assert.Equal(t, "damaged item refund", adj.Reason)

	// The source row is untouched.
	src, err := repo.Get(ctx, "s1", "inv-1")
	require.NoError(t, err)
	assert.Equal(t, 95.00, src.StoreAmount)
	assert.Equal(t, domain.StatusSettled, src.Status)

	txns, err := repo.ListByStore(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, txns, 2)
}

func TestLedgerRepositoryStoreIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository(pathstore.NewMemoryStore())

	seedLedgerTxn(t, repo, "s1", "inv-1", domain.StatusPending)
	seedLedgerTxn(t, repo, "s2", "inv-2", domain.StatusPending)
	seedLedgerTxn(t, repo, "s2", "inv-3", domain.StatusPending)

	ids, err := repo.StoreIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, ids)
}
