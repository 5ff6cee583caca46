package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/tindahan/ledger-service/internal/domain"
	"github.com/tindahan/ledger-service/internal/pathstore"
)

// OrderRepository touches only the payment fields of marketplace orders.
// Order CRUD lives in the dashboard backend proper.
type OrderRepository struct {
	store pathstore.Store
}

func NewOrderRepository(store pathstore.Store) *OrderRepository {
	return &OrderRepository{store: store}
}

// IDsByNumber returns every order id indexed under an order number. Degenerate
// data can hold more than one record per number; callers update all of them.
func (r *OrderRepository) IDsByNumber(ctx context.Context, orderNumber string) ([]string, error) {
	ids, err := r.store.Children(ctx, orderNumberIndexPath(orderNumber))
	if err != nil {
		return nil, fmt.Errorf("IDsByNumber: %w", err)
	}
	return ids, nil
}

func (r *OrderRepository) SetPaymentStatus(ctx context.Context, orderID string, status domain.OrderPaymentStatus, method string) error {
	fields := map[string]any{
		"paymentStatus": status,
		"updatedAt":     time.Now().UTC(),
	}
	if method != "" {
		fields["paymentMethod"] = method
	}
	if err := r.store.Merge(ctx, orderPath(orderID), fields); err != nil {
		return fmt.Errorf("SetPaymentStatus: %w", err)
	}
	return nil
}
