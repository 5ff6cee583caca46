package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tindahan/ledger-service/internal/domain"
	"github.com/tindahan/ledger-service/internal/pathstore"
)

// PayoutRepository reads withdrawal records written by the payout subsystem.
// Reconciliation consumes them; this service never writes payouts.
type PayoutRepository struct {
	store pathstore.Store
}

func NewPayoutRepository(store pathstore.Store) *PayoutRepository {
	return &PayoutRepository{store: store}
}

func (r *PayoutRepository) List(ctx context.Context) ([]domain.Payout, error) {
	ids, err := r.store.Children(ctx, payoutsPath)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}

	payouts := make([]domain.Payout, 0, len(ids))
	for _, id := range ids {
		var p domain.Payout
		err := r.store.Get(ctx, payoutPath(id), &p)
		if errors.Is(err, pathstore.ErrPathNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		if p.ID == "" {
			p.ID = id
		}
		p.Status = domain.NormalizePayoutStatus(string(p.Status))
		payouts = append(payouts, p)
	}
	return payouts, nil
}
