package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tindahan/ledger-service/internal/logging"
	"github.com/tindahan/ledger-service/internal/service"
)

type SettingsHandler struct {
	commission *service.CommissionResolver
}

func NewSettingsHandler(commission *service.CommissionResolver) *SettingsHandler {
	return &SettingsHandler{commission: commission}
}

type commissionRateRequest struct {
	Rate *float64 `json:"rate" validate:"required"`
}

type commissionRateResponse struct {
	Rate     float64 `json:"rate"`
	Override bool    `json:"override,omitempty"`
}

func (h *SettingsHandler) GetGlobalRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.commission.GlobalRate(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, commissionRateResponse{Rate: rate})
}

func (h *SettingsHandler) SetGlobalRate(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req commissionRateRequest
	fields, err := decodeJSONBody(r, &req)
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	if err := h.commission.SetGlobalRate(r.Context(), *req.Rate); err != nil {
		RespondDomainError(w, err)
		return
	}

	log.Info("global commission rate updated", "rate", *req.Rate)
	RespondSuccess(w, http.StatusOK, commissionRateResponse{Rate: *req.Rate})
}

func (h *SettingsHandler) GetStoreRate(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")

	rate, override, err := h.commission.StoreRate(r.Context(), storeID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	if !override {
		// Fall back to the effective rate so the dashboard always has
		// something to display.
		rate, err = h.commission.RateFor(r.Context(), storeID)
		if err != nil {
			RespondDomainError(w, err)
			return
		}
	}
	RespondSuccess(w, http.StatusOK, commissionRateResponse{Rate: rate, Override: override})
}

func (h *SettingsHandler) SetStoreRate(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	storeID := chi.URLParam(r, "storeID")

	var req commissionRateRequest
	fields, err := decodeJSONBody(r, &req)
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	if err := h.commission.SetStoreRate(r.Context(), storeID, *req.Rate); err != nil {
		RespondDomainError(w, err)
		return
	}

	log.Info("store commission override set", "store_id", storeID, "rate", *req.Rate)
	RespondSuccess(w, http.StatusOK, commissionRateResponse{Rate: *req.Rate, Override: true})
}

func (h *SettingsHandler) ClearStoreRate(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	storeID := chi.URLParam(r, "storeID")

	if err := h.commission.ClearStoreRate(r.Context(), storeID); err != nil {
		RespondDomainError(w, err)
		return
	}

	log.Info("store commission override cleared", "store_id", storeID)
	RespondSuccess(w, http.StatusOK, nil)
}
