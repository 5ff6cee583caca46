package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tindahan/ledger-service/internal/logging"
	"github.com/tindahan/ledger-service/internal/repository"
	"github.com/tindahan/ledger-service/internal/service"
)

type WalletHandler struct {
	wallets        *repository.WalletRepository
	ledger         *repository.LedgerRepository
	reconciliation *service.ReconciliationService
}

func NewWalletHandler(wallets *repository.WalletRepository, ledger *repository.LedgerRepository, reconciliation *service.ReconciliationService) *WalletHandler {
	return &WalletHandler{wallets: wallets, ledger: ledger, reconciliation: reconciliation}
}

func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")

	wallet, err := h.wallets.Get(r.Context(), storeID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, wallet)
}

func (h *WalletHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")

	txns, err := h.ledger.ListByStore(r.Context(), storeID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, txns)
}

func (h *WalletHandler) RunReconciliation(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	summary, err := h.reconciliation.Run(r.Context())
	if err != nil {
		log.Error("manual reconciliation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	log.Info("manual reconciliation completed", "stores", summary.Stores)
	RespondSuccess(w, http.StatusOK, summary)
}
