package router

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tindahan/ledger-service/internal/auth"
	"github.com/tindahan/ledger-service/internal/handler"
	"github.com/tindahan/ledger-service/internal/pathstore"
	"github.com/tindahan/ledger-service/internal/repository"
	"github.com/tindahan/ledger-service/internal/service"
)

const (
	testJWTSecret     = "test-admin-secret"
	testCallbackToken = "test-callback-token"
)

type routerFixture struct {
	router http.Handler
	store  *pathstore.MemoryStore
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	store := pathstore.NewMemoryStore()
	settings := repository.NewSettingsRepository(store)
	ledger := repository.NewLedgerRepository(store)
	indexes := repository.NewIndexRepository(store)
	wallets := repository.NewWalletRepository(store)
	payouts := repository.NewPayoutRepository(store)
	orders := repository.NewOrderRepository(store)
	processed := repository.NewProcessedWebhookRepository(store)

	commission := service.NewCommissionResolver(settings)
	processor := service.NewWebhookProcessor(processed, indexes, ledger, wallets, orders)
	reconciliation := service.NewReconciliationService(ledger, payouts, wallets, slog.Default(), time.Hour)

	r := New(Config{
		Invoices:       handler.NewInvoiceHandler(nil),
		Webhooks:       handler.NewWebhookHandler(processor, testCallbackToken),
		Transactions:   handler.NewTransactionHandler(nil),
		Settings:       handler.NewSettingsHandler(commission),
		Wallets:        handler.NewWalletHandler(wallets, ledger, reconciliation),
		AdminJWTSecret: testJWTSecret,
	})
	return &routerFixture{router: r, store: store}
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken(uuid.New(), "ops@platform.test", testJWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func TestRouterHealth(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterAdminEndpointsRequireToken(t *testing.T) {
	f := newRouterFixture(t)

	endpoints := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/settings/commission"},
		{http.MethodPost, "/api/v1/settings/commission"},
		{http.MethodGet, "/api/v1/stores/s1/wallet"},
		{http.MethodPost, "/api/v1/reconciliation/run"},
		{http.MethodPost, "/api/v1/transactions/inv-1/adjustment"},
	}

	for _, ep := range endpoints {
		req := httptest.NewRequest(ep.method, ep.path, strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", ep.method, ep.path)

		var resp handler.APIResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, "MISSING_TOKEN", resp.Error.Code)
	}
}

func TestRouterRejectsBadToken(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings/commission", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_TOKEN", resp.Error.Code)
}

func TestRouterCommissionSettings(t *testing.T) {
	f := newRouterFixture(t)
	token := adminToken(t)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body != "" {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/api/v1/settings/commission", `{"rate": 0.07}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(http.MethodGet, "/api/v1/settings/commission", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rate":0.07`)

	rec = do(http.MethodPost, "/api/v1/settings/stores/s1/commission", `{"rate": 0.02}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(http.MethodGet, "/api/v1/settings/stores/s1/commission", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rate":0.02`)
	assert.Contains(t, rec.Body.String(), `"override":true`)

	rec = do(http.MethodDelete, "/api/v1/settings/stores/s1/commission", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// With the override gone the store falls back to the global rate.
	rec = do(http.MethodGet, "/api/v1/settings/stores/s1/commission", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rate":0.07`)

	rec = do(http.MethodPost, "/api/v1/settings/commission", `{"rate": 1.5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
