package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tindahan/ledger-service/internal/config"
	"github.com/tindahan/ledger-service/internal/handler"
	"github.com/tindahan/ledger-service/internal/logging"
	"github.com/tindahan/ledger-service/internal/pathstore"
	"github.com/tindahan/ledger-service/internal/provider"
	"github.com/tindahan/ledger-service/internal/repository"
	"github.com/tindahan/ledger-service/internal/router"
	"github.com/tindahan/ledger-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("ledger-api", cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := pathstore.NewPostgresDB(ctx, cfg.DatabaseURL, pathstore.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := pathstore.NewPostgresStore(db)
	if err := store.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	ledgerRepo := repository.NewLedgerRepository(store)
	indexRepo := repository.NewIndexRepository(store)
	walletRepo := repository.NewWalletRepository(store)
	settingsRepo := repository.NewSettingsRepository(store)
	processedRepo := repository.NewProcessedWebhookRepository(store)
	payoutRepo := repository.NewPayoutRepository(store)
	orderRepo := repository.NewOrderRepository(store)

	providerClient := provider.NewClient(cfg.ProviderBaseURL, cfg.ProviderAPIKey)

	commission := service.NewCommissionResolver(settingsRepo)
	issuance := service.NewIssuanceService(commission, providerClient, ledgerRepo, indexRepo, cfg.InvoiceDuration())
	transactions := service.NewTransactionService(ledgerRepo, indexRepo, providerClient, cfg.InvoiceDuration())
	webhooks := service.NewWebhookProcessor(processedRepo, indexRepo, ledgerRepo, walletRepo, orderRepo)
	reconciliation := service.NewReconciliationService(ledgerRepo, payoutRepo, walletRepo, slog.Default(), cfg.ReconcileInterval())

	go reconciliation.Start(ctx)

	mux := router.New(router.Config{
		Invoices:       handler.NewInvoiceHandler(issuance),
		Webhooks:       handler.NewWebhookHandler(webhooks, cfg.CallbackToken),
		Transactions:   handler.NewTransactionHandler(transactions),
		Settings:       handler.NewSettingsHandler(commission),
		Wallets:        handler.NewWalletHandler(walletRepo, ledgerRepo, reconciliation),
		AdminJWTSecret: cfg.AdminJWTSecret,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
