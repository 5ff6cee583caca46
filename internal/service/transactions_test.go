package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tindahan/ledger-service/internal/domain"
	"github.com/tindahan/ledger-service/internal/pathstore"
	"github.com/tindahan/ledger-service/internal/repository"
)

type transactionFixture struct {
	svc     *TransactionService
	client  *fakeInvoiceClient
	ledger  *repository.LedgerRepository
	indexes *repository.IndexRepository
}

func newTransactionFixture(t *testing.T) *transactionFixture {
	t.Helper()

	store := pathstore.NewMemoryStore()
	ledger := repository.NewLedgerRepository(store)
	indexes := repository.NewIndexRepository(store)
	client := &fakeInvoiceClient{}

	return &transactionFixture{
		svc:     NewTransactionService(ledger, indexes, client, 24*time.Hour),
		client:  client,
		ledger:  ledger,
		indexes: indexes,
	}
}

func (f *transactionFixture) seedSale(t *testing.T, invoiceID string, amount float64, status domain.TransactionStatus) {
	t.Helper()
	ctx := context.Background()

	commission := domain.CommissionFor(amount, 0.05)
	require.NoError(t, f.ledger.WriteDraft(ctx, &domain.LedgerTransaction{
		InvoiceID:      invoiceID,
		StoreID:        "s1",
		OrderNumber:    "ORD-1001",
		OrderID:        "order-uuid-1",
		Type:           domain.TypeSale,
		Amount:         amount,
		Commission:     commission,
		CommissionRate: 0.05,
		StoreAmount:    domain.StoreEarningsFor(amount, commission),
		Status:         domain.StatusPending,
		CreatedAt:      time.Now().UTC(),
	}))
	require.NoError(t, f.indexes.SetInvoiceStore(ctx, invoiceID, domain.InvoiceIndexEntry{
		StoreID:     "s1",
		OrderNumber: "ORD-1001",
	}))

	if status != domain.StatusPending {
		_, err := f.ledger.Update(ctx, "s1", invoiceID, domain.TransactionUpdate{Status: &status})
		require.NoError(t, err)
	}
}

func TestAdjust(t *testing.T) {
	ctx := context.Background()
	f := newTransactionFixture(t)
	f.seedSale(t, "inv-1", 100.00, domain.StatusSettled)

	result, err := f.svc.Adjust(ctx, "inv-1", -20.00, "partial refund, damaged item")
	require.NoError(t, err)
	assert.Equal(t, "s1", result.StoreID)
	assert.Equal(t, -20.00, result.Delta)
	assert.Contains(t, result.AdjustmentID, "ADJ-")

	// Original row is untouched; the correction is a sibling row.
	src, err := f.ledger.Get(ctx, "s1", "inv-1")
	require.NoError(t, err)
	assert.Equal(t, 95.00, src.StoreAmount)

	txns, err := f.ledger.ListByStore(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, txns, 2)
}

func TestAdjustRejectsZeroDelta(t *testing.T) {
	f := newTransactionFixture(t)
	f.seedSale(t, "inv-1", 100.00, domain.StatusSettled)

	_, err := f.svc.Adjust(context.Background(), "inv-1", 0, "noop")
	assert.ErrorIs(t, err, domain.ErrZeroAdjustment)
}

func TestAdjustUnknownInvoice(t *testing.T) {
	f := newTransactionFixture(t)

	_, err := f.svc.Adjust(context.Background(), "inv-ghost", 5, "reason")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReplacePendingWithNewRate(t *testing.T) {
	ctx := context.Background()
	f := newTransactionFixture(t)
	f.seedSale(t, "inv-1", 200.00, domain.StatusPending)

	rate := 0.03
	result, err := f.svc.ReplacePending(ctx, "inv-1", ReplaceRequest{NewCommissionRate: &rate})
	require.NoError(t, err)
	assert.NotEqual(t, "inv-1", result.InvoiceID, "replacement gets a fresh provider invoice id")
	assert.Equal(t, 6.00, result.Commission)
	assert.Equal(t, 194.00, result.StoreAmount)
	assert.Equal(t, "inv-1", f.client.expired[0], "old invoice expired at the provider")

	// The ledger row moved to the new invoice id with the history pointer.
	txn, err := f.ledger.Get(ctx, "s1", result.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, "inv-1", txn.PreviousInvoiceID)
	assert.Equal(t, 6.00, txn.Commission)
	assert.Equal(t, 0.03, txn.CommissionRate)
	assert.Equal(t, 194.00, txn.StoreAmount)
	assert.Equal(t, 200.00, txn.Amount, "order total is unchanged")
	assert.Equal(t, domain.StatusPending, txn.Status)

	_, err = f.ledger.Get(ctx, "s1", "inv-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// A webhook for the new invoice can find its store.
	entry, err := f.indexes.GetInvoiceStore(ctx, result.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, "s1", entry.StoreID)
}

func TestReplacePendingWithNewAmount(t *testing.T) {
	ctx := context.Background()
	f := newTransactionFixture(t)
	f.seedSale(t, "inv-1", 200.00, domain.StatusPending)

	amount := 9.00
	result, err := f.svc.ReplacePending(ctx, "inv-1", ReplaceRequest{NewCommissionAmount: &amount})
	require.NoError(t, err)
	assert.Equal(t, 9.00, result.Commission)
	assert.Equal(t, 191.00, result.StoreAmount)

	txn, err := f.ledger.Get(ctx, "s1", result.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, 0.045, txn.CommissionRate, "rate derived from the amount")
}

func TestReplacePendingValidation(t *testing.T) {
	ctx := context.Background()
	f := newTransactionFixture(t)
	f.seedSale(t, "inv-1", 200.00, domain.StatusPending)

	_, err := f.svc.ReplacePending(ctx, "inv-1", ReplaceRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	bad := 1.5
	_, err = f.svc.ReplacePending(ctx, "inv-1", ReplaceRequest{NewCommissionRate: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	tooMuch := 500.0
	_, err = f.svc.ReplacePending(ctx, "inv-1", ReplaceRequest{NewCommissionAmount: &tooMuch})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReplacePendingRejectsPaidInvoice(t *testing.T) {
	ctx := context.Background()
	f := newTransactionFixture(t)
	f.seedSale(t, "inv-1", 200.00, domain.StatusPaid)

	rate := 0.03
	_, err := f.svc.ReplacePending(ctx, "inv-1", ReplaceRequest{NewCommissionRate: &rate})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	assert.Empty(t, f.client.created, "no replacement invoice for paid rows")
	assert.Empty(t, f.client.expired)
}

func TestReplacePendingSurvivesExpireFailure(t *testing.T) {
	ctx := context.Background()
	f := newTransactionFixture(t)
	f.seedSale(t, "inv-1", 200.00, domain.StatusPending)
	f.client.expireErr = assert.AnError

	rate := 0.03
	result, err := f.svc.ReplacePending(ctx, "inv-1", ReplaceRequest{NewCommissionRate: &rate})
	require.NoError(t, err, "expire is best effort")
	assert.NotEmpty(t, result.InvoiceID)
}
