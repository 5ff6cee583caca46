package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tindahan/ledger-service/internal/domain"
)

type ledgerReader interface {
	StoreIDs(ctx context.Context) ([]string, error)
	ListByStore(ctx context.Context, storeID string) ([]domain.LedgerTransaction, error)
}

type payoutReader interface {
	List(ctx context.Context) ([]domain.Payout, error)
}

type walletReconciler interface {
	WriteReconciled(ctx context.Context, storeID string, w domain.Wallet) error
}

// ReconciliationService rebuilds wallet balances from the ledger and payout
// history. It deliberately ignores the incrementally-maintained balance: a
// run is a pure function of ledger+payout state, so running it twice in a row
// yields the same result, and any drift from missed or duplicated webhook
// effects is corrected on the next pass.
type ReconciliationService struct {
	ledger   ledgerReader
	payouts  payoutReader
	wallets  walletReconciler
	logger   *slog.Logger
	interval time.Duration
}

func NewReconciliationService(ledger ledgerReader, payouts payoutReader, wallets walletReconciler, logger *slog.Logger, interval time.Duration) *ReconciliationService {
	return &ReconciliationService{
		ledger:   ledger,
		payouts:  payouts,
		wallets:  wallets,
		logger:   logger,
		interval: interval,
	}
}

// Start runs Run on the configured interval until the context is cancelled.
func (s *ReconciliationService) Start(ctx context.Context) {
	s.logger.Info("reconciliation worker started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reconciliation worker stopped")
			return
		case <-ticker.C:
			if _, err := s.Run(ctx); err != nil {
				s.logger.Error("reconciliation run failed", "error", err)
			}
		}
	}
}

type ReconciliationSummary struct {
	Stores int `json:"stores"`
}

func (s *ReconciliationService) Run(ctx context.Context) (*ReconciliationSummary, error) {
	storeIDs, err := s.ledger.StoreIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	payouts, err := s.payouts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}
	payoutsByStore := map[string][]domain.Payout{}
	for _, p := range payouts {
		payoutsByStore[p.StoreID] = append(payoutsByStore[p.StoreID], p)
	}

	// Stores with payout history but no ledger rows still get reconciled.
	seen := map[string]struct{}{}
	for _, id := range storeIDs {
		seen[id] = struct{}{}
	}
	for id := range payoutsByStore {
		if _, ok := seen[id]; !ok {
			storeIDs = append(storeIDs, id)
		}
	}

	now := time.Now().UTC()
	for _, storeID := range storeIDs {
		if err := s.reconcileStore(ctx, storeID, payoutsByStore[storeID], now); err != nil {
			return nil, fmt.Errorf("Run: store %s: %w", storeID, err)
		}
	}

	s.logger.Info("reconciliation complete", "stores", len(storeIDs))
	return &ReconciliationSummary{Stores: len(storeIDs)}, nil
}

func (s *ReconciliationService) reconcileStore(ctx context.Context, storeID string, payouts []domain.Payout, now time.Time) error {
	txns, err := s.ledger.ListByStore(ctx, storeID)
	if err != nil {
		return err
	}

	// Decimal accumulators: summing a long transaction history in float64
	// drifts below the cent.
	earned := decimal.Zero
	pending := decimal.Zero
	for _, txn := range txns {
		switch {
		case txn.Status.Credits():
			earned = earned.Add(decimal.NewFromFloat(txn.StoreAmount))
		case txn.Status == domain.StatusPending:
			pending = pending.Add(decimal.NewFromFloat(txn.StoreAmount))
		}
	}

	withdrawn := decimal.Zero
	held := decimal.Zero
	for _, p := range payouts {
		switch {
		case p.Status == domain.PayoutCompleted:
			withdrawn = withdrawn.Add(decimal.NewFromFloat(p.Amount))
		case p.Status.Holds():
			held = held.Add(decimal.NewFromFloat(p.Amount))
		}
	}

	available := earned.Sub(withdrawn).Sub(held)
	if available.IsNegative() {
		available = decimal.Zero
	}

	w := domain.Wallet{
		Available:         round2(available),
		Pending:           round2(pending),
		PendingWithdrawal: round2(held),
		TotalWithdrawn:    round2(withdrawn),
		UpdatedAt:         now,
	}
	if err := s.wallets.WriteReconciled(ctx, storeID, w); err != nil {
		return err
	}
	return nil
}

func round2(d decimal.Decimal) float64 {
	v, _ := d.Round(2).Float64()
	return v
}
