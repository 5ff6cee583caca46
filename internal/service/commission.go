package service

import (
	"context"
	"fmt"

	"github.com/tindahan/ledger-service/internal/domain"
	"github.com/tindahan/ledger-service/internal/logging"
)

// DefaultCommissionRate is the compiled-in fallback used until an operator
// sets a platform rate.
const DefaultCommissionRate = 0.05

type settingsRepo interface {
	GlobalRate(ctx context.Context) (float64, bool, error)
	StoreRate(ctx context.Context, storeID string) (float64, bool, error)
	SetGlobalRate(ctx context.Context, rate float64) error
	SetStoreRate(ctx context.Context, storeID string, rate float64) error
	ClearStoreRate(ctx context.Context, storeID string) error
}

// CommissionResolver resolves the effective commission rate for a store:
// store override, else platform setting, else the compiled default. A missing
// platform setting is seeded with the default on first read.
type CommissionResolver struct {
	settings    settingsRepo
	defaultRate float64
}

func NewCommissionResolver(settings settingsRepo) *CommissionResolver {
	return &CommissionResolver{settings: settings, defaultRate: DefaultCommissionRate}
}

func (r *CommissionResolver) RateFor(ctx context.Context, storeID string) (float64, error) {
	rate, ok, err := r.settings.StoreRate(ctx, storeID)
	if err != nil {
		return 0, fmt.Errorf("RateFor: %w", err)
	}
	if ok {
		return rate, nil
	}

	rate, ok, err = r.settings.GlobalRate(ctx)
	if err != nil {
		return 0, fmt.Errorf("RateFor: %w", err)
	}
	if ok {
		return rate, nil
	}

	if err := r.settings.SetGlobalRate(ctx, r.defaultRate); err != nil {
		// Seeding is convenience, not correctness; the default still applies.
		logging.FromContext(ctx).Warn("failed to seed platform commission rate", "error", err)
	}
	return r.defaultRate, nil
}

func (r *CommissionResolver) GlobalRate(ctx context.Context) (float64, error) {
	rate, ok, err := r.settings.GlobalRate(ctx)
	if err != nil {
		return 0, fmt.Errorf("GlobalRate: %w", err)
	}
	if !ok {
		return r.defaultRate, nil
	}
	return rate, nil
}

func (r *CommissionResolver) StoreRate(ctx context.Context, storeID string) (float64, bool, error) {
	rate, ok, err := r.settings.StoreRate(ctx, storeID)
	if err != nil {
		return 0, false, fmt.Errorf("StoreRate: %w", err)
	}
	return rate, ok, nil
}

func (r *CommissionResolver) SetGlobalRate(ctx context.Context, rate float64) error {
	if err := validateRate(rate); err != nil {
		return fmt.Errorf("SetGlobalRate: %w", err)
	}
	if err := r.settings.SetGlobalRate(ctx, rate); err != nil {
		return fmt.Errorf("SetGlobalRate: %w", err)
	}
	return nil
}

func (r *CommissionResolver) SetStoreRate(ctx context.Context, storeID string, rate float64) error {
	if err := validateRate(rate); err != nil {
		return fmt.Errorf("SetStoreRate: %w", err)
	}
	if err := r.settings.SetStoreRate(ctx, storeID, rate); err != nil {
		return fmt.Errorf("SetStoreRate: %w", err)
	}
	return nil
}

func (r *CommissionResolver) ClearStoreRate(ctx context.Context, storeID string) error {
	if err := r.settings.ClearStoreRate(ctx, storeID); err != nil {
		return fmt.Errorf("ClearStoreRate: %w", err)
	}
	return nil
}

func validateRate(rate float64) error {
	if rate < 0 || rate > 1 {
		return domain.ErrInvalidRate
	}
	return nil
}
