package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/tindahan/ledger-service/internal/domain"
	"github.com/tindahan/ledger-service/internal/pathstore"
)

var FixedNow = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

// SeedTransaction writes a ledger row directly at its canonical path,
// bypassing the repository's draft checks.
func SeedTransaction(t *testing.T, store pathstore.Store, txn domain.LedgerTransaction) {
	t.Helper()

	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = FixedNow
	}
	path := pathstore.Join("ledgers", "stores", txn.StoreID, "transactions", txn.InvoiceID)
	if err := store.Set(context.Background(), path, txn); err != nil {
		t.Fatalf("seed transaction %s: %v", txn.InvoiceID, err)
	}
	if err := store.Set(context.Background(), pathstore.Join("indexes", "invoice_to_store", txn.InvoiceID), domain.InvoiceIndexEntry{
		StoreID:     txn.StoreID,
		OrderNumber: txn.OrderNumber,
	}); err != nil {
		t.Fatalf("seed invoice index %s: %v", txn.InvoiceID, err)
	}
}

func SeedPayout(t *testing.T, store pathstore.Store, p domain.Payout) {
	t.Helper()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = FixedNow
	}
	if err := store.Set(context.Background(), pathstore.Join("payouts", p.ID), p); err != nil {
		t.Fatalf("seed payout %s: %v", p.ID, err)
	}
}

func SeedWallet(t *testing.T, store pathstore.Store, storeID string, w domain.Wallet) {
	t.Helper()

	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = FixedNow
	}
	if err := store.Set(context.Background(), pathstore.Join("wallets", storeID), w); err != nil {
		t.Fatalf("seed wallet %s: %v", storeID, err)
	}
}

func SeedOrder(t *testing.T, store pathstore.Store, o domain.Order) {
	t.Helper()

	if err := store.Set(context.Background(), pathstore.Join("orders", o.ID), o); err != nil {
		t.Fatalf("seed order %s: %v", o.ID, err)
	}
	if err := store.Set(context.Background(), pathstore.Join("indexes", "order_number", o.OrderNumber, o.ID), map[string]bool{"exists": true}); err != nil {
		t.Fatalf("seed order number index %s: %v", o.OrderNumber, err)
	}
}
