package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tindahan/ledger-service/internal/domain"
	"github.com/tindahan/ledger-service/internal/pathstore"
)

// WalletRepository maintains the derived per-store balance. The wallet write
// itself is not idempotent; callers gate credits behind the processed-webhook
// marker, and the reconciliation job rewrites balances from the ledger.
type WalletRepository struct {
	store pathstore.Store
}

func NewWalletRepository(store pathstore.Store) *WalletRepository {
	return &WalletRepository{store: store}
}

// Get returns the store's wallet, or a zero wallet when none has been
// written yet.
func (r *WalletRepository) Get(ctx context.Context, storeID string) (*domain.Wallet, error) {
	var w domain.Wallet
	err := r.store.Get(ctx, walletPath(storeID), &w)
	if errors.Is(err, pathstore.ErrPathNotFound) {
		return &domain.Wallet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &w, nil
}

// Credit adds amount to the store's available balance and records a wallet
// transaction keyed by invoice id, so a replayed credit for the same invoice
// overwrites its own record instead of appending a duplicate.
func (r *WalletRepository) Credit(ctx context.Context, storeID string, amount float64, invoiceID string, at time.Time) error {
	w, err := r.Get(ctx, storeID)
	if err != nil {
		return fmt.Errorf("Credit: %w", err)
	}

	fields := map[string]any{
		"available": domain.RoundCurrency(w.Available + amount),
		"total":     domain.RoundCurrency(w.Total + amount),
		"updatedAt": at,
	}
	if err := r.store.Merge(ctx, walletPath(storeID), fields); err != nil {
		return fmt.Errorf("Credit: %w", err)
	}

	entry := domain.WalletTransaction{
		Type:      domain.WalletEntryCredit,
		Amount:    domain.RoundCurrency(amount),
		InvoiceID: invoiceID,
		CreatedAt: at,
	}
	if err := r.store.Set(ctx, walletTransactionPath(storeID, "WALLET-"+invoiceID), entry); err != nil {
		return fmt.Errorf("Credit: record entry: %w", err)
	}
	return nil
}

// WriteReconciled replaces the derived balance fields with values recomputed
// from the ledger and payout history.
func (r *WalletRepository) WriteReconciled(ctx context.Context, storeID string, w domain.Wallet) error {
	fields := map[string]any{
		"available":         w.Available,
		"pending":           w.Pending,
		"pendingWithdrawal": w.PendingWithdrawal,
		"totalWithdrawn":    w.TotalWithdrawn,
		"updatedAt":         w.UpdatedAt,
	}
	if err := r.store.Merge(ctx, walletPath(storeID), fields); err != nil {
		return fmt.Errorf("WriteReconciled: %w", err)
	}
	return nil
}
