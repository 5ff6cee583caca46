// Package router assembles the HTTP surface: middleware chain, public
// endpoints and the admin-authenticated group. It sits above both handler and
// middleware so neither needs to import the other.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tindahan/ledger-service/internal/handler"
	"github.com/tindahan/ledger-service/internal/middleware"
)

type Config struct {
	Invoices       *handler.InvoiceHandler
	Webhooks       *handler.WebhookHandler
	Transactions   *handler.TransactionHandler
	Settings       *handler.SettingsHandler
	Wallets        *handler.WalletHandler
	AdminJWTSecret string
}

func New(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Tracing)
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)

	r.Get("/health", handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/invoices", cfg.Invoices.Create)
		r.Post("/webhooks/invoice", cfg.Webhooks.HandleInvoice)

		// Back-office endpoints for the admin dashboard.
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.AdminJWTSecret))

			r.Post("/transactions/{invoiceID}/adjustment", cfg.Transactions.Adjust)
			r.Post("/transactions/{invoiceID}/replace-invoice", cfg.Transactions.ReplaceInvoice)

			r.Get("/settings/commission", cfg.Settings.GetGlobalRate)
			r.Post("/settings/commission", cfg.Settings.SetGlobalRate)
			r.Get("/settings/stores/{storeID}/commission", cfg.Settings.GetStoreRate)
			r.Post("/settings/stores/{storeID}/commission", cfg.Settings.SetStoreRate)
			r.Delete("/settings/stores/{storeID}/commission", cfg.Settings.ClearStoreRate)

			r.Get("/stores/{storeID}/wallet", cfg.Wallets.GetWallet)
			r.Get("/stores/{storeID}/transactions", cfg.Wallets.ListTransactions)
			r.Post("/reconciliation/run", cfg.Wallets.RunReconciliation)
		})
	})

	return r
}
