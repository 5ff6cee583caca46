package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tindahan/ledger-service/internal/pathstore"
)

// SettingsRepository reads and writes commission rate settings. Rates are
// stored as bare numbers at their settings paths.
type SettingsRepository struct {
	store pathstore.Store
}

func NewSettingsRepository(store pathstore.Store) *SettingsRepository {
	return &SettingsRepository{store: store}
}

func (r *SettingsRepository) GlobalRate(ctx context.Context) (float64, bool, error) {
	return r.rate(ctx, globalCommissionPath)
}

func (r *SettingsRepository) StoreRate(ctx context.Context, storeID string) (float64, bool, error) {
	return r.rate(ctx, storeCommissionPath(storeID))
}

func (r *SettingsRepository) rate(ctx context.Context, path string) (float64, bool, error) {
	var rate float64
	err := r.store.Get(ctx, path, &rate)
	if errors.Is(err, pathstore.ErrPathNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("rate: %w", err)
	}
	return rate, true, nil
}

func (r *SettingsRepository) SetGlobalRate(ctx context.Context, rate float64) error {
	if err := r.store.Set(ctx, globalCommissionPath, rate); err != nil {
		return fmt.Errorf("SetGlobalRate: %w", err)
	}
	return nil
}

func (r *SettingsRepository) SetStoreRate(ctx context.Context, storeID string, rate float64) error {
	if err := r.store.Set(ctx, storeCommissionPath(storeID), rate); err != nil {
		return fmt.Errorf("SetStoreRate: %w", err)
	}
	return nil
}

func (r *SettingsRepository) ClearStoreRate(ctx context.Context, storeID string) error {
	if err := r.store.Delete(ctx, storeCommissionPath(storeID)); err != nil {
		return fmt.Errorf("ClearStoreRate: %w", err)
	}
	return nil
}
