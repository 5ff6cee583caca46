package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tindahan/ledger-service/internal/domain"
	"github.com/tindahan/ledger-service/internal/pathstore"
	"github.com/tindahan/ledger-service/internal/provider"
	"github.com/tindahan/ledger-service/internal/repository"
)

type fakeInvoiceClient struct {
	created   []provider.CreateInvoiceRequest
	expired   []string
	createErr error
	expireErr error
	status    string
}

func (f *fakeInvoiceClient) CreateInvoice(ctx context.Context, req provider.CreateInvoiceRequest) (*provider.Invoice, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	status := f.status
	if status == "" {
		status = "PENDING"
	}
	return &provider.Invoice{
		ID:         fmt.Sprintf("prov-inv-%d", len(f.created)),
		ExternalID: req.ExternalID,
		Status:     status,
		Amount:     req.Amount,
		InvoiceURL: fmt.Sprintf("https://checkout.test/prov-inv-%d", len(f.created)),
		ExpiryDate: time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC),
	}, nil
}

func (f *fakeInvoiceClient) ExpireInvoice(ctx context.Context, invoiceID string) error {
	if f.expireErr != nil {
		return f.expireErr
	}
	f.expired = append(f.expired, invoiceID)
	return nil
}

type issuanceFixture struct {
	svc      *IssuanceService
	client   *fakeInvoiceClient
	ledger   *repository.LedgerRepository
	indexes  *repository.IndexRepository
	settings *repository.SettingsRepository
	store    *pathstore.MemoryStore
}

func newIssuanceFixture(t *testing.T) *issuanceFixture {
	t.Helper()

	store := pathstore.NewMemoryStore()
	settings := repository.NewSettingsRepository(store)
	ledger := repository.NewLedgerRepository(store)
	indexes := repository.NewIndexRepository(store)
	client := &fakeInvoiceClient{}

	svc := NewIssuanceService(NewCommissionResolver(settings), client, ledger, indexes, 24*time.Hour)
	return &issuanceFixture{
		svc:      svc,
		client:   client,
		ledger:   ledger,
		indexes:  indexes,
		settings: settings,
		store:    store,
	}
}

func issueRequest() IssueRequest {
	return IssueRequest{
		OrderNumber: "ORD-1001",
		OrderID:     "order-uuid-1",
		Total:       100.00,
		Method:      "gcash",
		Store:       IssueStore{ID: "s1", Name: "Aling Nena's", Email: "nena@store.test"},
		Customer:    IssueCustomer{Name: "Juan", Email: "juan@buyer.test", Phone: "+639170000000"},
		Items:       []IssueItem{{Name: "Rice 5kg", Quantity: 2, Price: 50.00}},
	}
}

func TestIssue(t *testing.T) {
	ctx := context.Background()
	f := newIssuanceFixture(t)
	require.NoError(t, f.settings.SetGlobalRate(ctx, 0.05))

	result, err := f.svc.Issue(ctx, issueRequest())
	require.NoError(t, err)

	assert.Equal(t, "prov-inv-1", result.InvoiceID)
	assert.Equal(t, 5.00, result.Commission)
	assert.Equal(t, 95.00, result.StoreAmount)
	assert.NotEmpty(t, result.InvoiceURL)

	// The provider request carries the fee and the attribution metadata.
	require.Len(t, f.client.created, 1)
	req := f.client.created[0]
	assert.Equal(t, "order-ORD-1001", req.ExternalID)
	assert.Equal(t, 100.00, req.Amount)
	assert.Equal(t, []string{"GCASH"}, req.PaymentMethods)
	require.Len(t, req.Fees, 1)
	assert.Equal(t, "platform_fee", req.Fees[0].Type)
	assert.Equal(t, 5.00, req.Fees[0].Value)
	assert.Equal(t, 86400, req.InvoiceDuration)
	assert.Equal(t, "s1", req.Metadata.StoreID)
	assert.Equal(t, 5.00, req.Metadata.Commission)
	assert.Equal(t, 95.00, req.Metadata.StoreAmount)

	// A PENDING draft row exists with the commission snapshot.
	txn, err := f.ledger.Get(ctx, "s1", "prov-inv-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, txn.Status)
	assert.Equal(t, domain.TypeSale, txn.Type)
	assert.Equal(t, 100.00, txn.Amount)
	assert.Equal(t, 5.00, txn.Commission)
	assert.Equal(t, 0.05, txn.CommissionRate)
	assert.Equal(t, 95.00, txn.StoreAmount)
	assert.Equal(t, "ORD-1001", txn.OrderNumber)
	assert.Equal(t, "gcash", txn.Method)

	// The webhook lookup indexes are in place.
	entry, err := f.indexes.GetInvoiceStore(ctx, "prov-inv-1")
	require.NoError(t, err)
	assert.Equal(t, "s1", entry.StoreID)
	assert.Equal(t, "ORD-1001", entry.OrderNumber)
}

func TestIssueUsesStoreOverrideRate(t *testing.T) {
	ctx := context.Background()
	f := newIssuanceFixture(t)
	require.NoError(t, f.settings.SetGlobalRate(ctx, 0.05))
	require.NoError(t, f.settings.SetStoreRate(ctx, "s1", 0.10))

	result, err := f.svc.Issue(ctx, issueRequest())
	require.NoError(t, err)
	assert.Equal(t, 10.00, result.Commission)
	assert.Equal(t, 90.00, result.StoreAmount)
}

func TestIssueValidation(t *testing.T) {
	ctx := context.Background()
	f := newIssuanceFixture(t)

	tests := []struct {
		name   string
		mutate func(*IssueRequest)
	}{
		{"zero total", func(r *IssueRequest) { r.Total = 0 }},
		{"negative total", func(r *IssueRequest) { r.Total = -5 }},
		{"missing order number", func(r *IssueRequest) { r.OrderNumber = "" }},
		{"missing store id", func(r *IssueRequest) { r.Store.ID = "" }},
		{"unsupported method", func(r *IssueRequest) { r.Method = "cash_on_delivery" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := issueRequest()
			tc.mutate(&req)
			_, err := f.svc.Issue(ctx, req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	assert.Empty(t, f.client.created, "no provider invoice on rejected input")
}

func TestIssueProviderFailure(t *testing.T) {
	ctx := context.Background()
	f := newIssuanceFixture(t)
	f.client.createErr = fmt.Errorf("boom: %w", domain.ErrProvider)

	_, err := f.svc.Issue(ctx, issueRequest())
	assert.ErrorIs(t, err, domain.ErrProvider)

	_, err = f.ledger.Get(ctx, "s1", "prov-inv-1")
	assert.ErrorIs(t, err, domain.ErrNotFound, "no draft without a provider invoice")
}
