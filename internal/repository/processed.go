package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/tindahan/ledger-service/internal/pathstore"
)

type processedMarker struct {
	ProcessedAt time.Time `json:"processedAt"`
}

// ProcessedWebhookRepository is the idempotency guard for provider callbacks.
// CheckAndMark claims an invoice id with a conditional write, so two
// concurrent deliveries of the same invoice cannot both pass the gate.
type ProcessedWebhookRepository struct {
	store pathstore.Store
}

func NewProcessedWebhookRepository(store pathstore.Store) *ProcessedWebhookRepository {
	return &ProcessedWebhookRepository{store: store}
}

// CheckAndMark reports true when the invoice id was already claimed.
func (r *ProcessedWebhookRepository) CheckAndMark(ctx context.Context, invoiceID string) (bool, error) {
	marker := processedMarker{ProcessedAt: time.Now().UTC()}
	wrote, err := r.store.SetIfAbsent(ctx, processedWebhookPath(invoiceID), marker)
	if err != nil {
		return false, fmt.Errorf("CheckAndMark: %w", err)
	}
	return !wrote, nil
}

// Release drops the claim so the provider's retry can reprocess the event.
// Used when processing fails after the marker was taken.
func (r *ProcessedWebhookRepository) Release(ctx context.Context, invoiceID string) error {
	if err := r.store.Delete(ctx, processedWebhookPath(invoiceID)); err != nil {
		return fmt.Errorf("Release: %w", err)
	}
	return nil
}
