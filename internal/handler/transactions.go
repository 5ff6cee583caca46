package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tindahan/ledger-service/internal/logging"
	"github.com/tindahan/ledger-service/internal/service"
)

type TransactionHandler struct {
	transactions *service.TransactionService
}

func NewTransactionHandler(transactions *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

type adjustmentRequest struct {
	DeltaStoreAmount float64 `json:"delta_store_amount" validate:"required"`
	Reason           string  `json:"reason"`
}

type adjustmentResponse struct {
	AdjustmentID string  `json:"adjustment_id"`
	StoreID      string  `json:"store_id"`
	Delta        float64 `json:"delta"`
}

func (h *TransactionHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	invoiceID := chi.URLParam(r, "invoiceID")

	var req adjustmentRequest
	fields, err := decodeJSONBody(r, &req)
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	result, err := h.transactions.Adjust(r.Context(), invoiceID, req.DeltaStoreAmount, req.Reason)
	if err != nil {
		log.Error("adjustment failed", "invoice_id", invoiceID, "error", err)
		RespondDomainError(w, err)
		return
	}

	log.Info("adjustment recorded",
		"invoice_id", invoiceID,
		"adjustment_id", result.AdjustmentID,
		"delta", result.Delta,
	)
	RespondSuccess(w, http.StatusCreated, adjustmentResponse{
		AdjustmentID: result.AdjustmentID,
		StoreID:      result.StoreID,
		Delta:        result.Delta,
	})
}

type replaceInvoiceRequest struct {
	NewCommissionRate   *float64 `json:"new_commission_rate" validate:"omitempty,gte=0,lte=1"`
	NewCommissionAmount *float64 `json:"new_commission_amount" validate:"omitempty,gte=0"`
}

type replaceInvoiceResponse struct {
	InvoiceID   string  `json:"invoice_id"`
	InvoiceURL  string  `json:"invoice_url"`
	Commission  float64 `json:"commission"`
	StoreAmount float64 `json:"store_amount"`
}

func (h *TransactionHandler) ReplaceInvoice(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	invoiceID := chi.URLParam(r, "invoiceID")

	var req replaceInvoiceRequest
	fields, err := decodeJSONBody(r, &req)
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	result, err := h.transactions.ReplacePending(r.Context(), invoiceID, service.ReplaceRequest{
		NewCommissionRate:   req.NewCommissionRate,
		NewCommissionAmount: req.NewCommissionAmount,
	})
	if err != nil {
		log.Error("invoice replacement failed", "invoice_id", invoiceID, "error", err)
		RespondDomainError(w, err)
		return
	}

	log.Info("invoice replaced", "old_invoice_id", invoiceID, "new_invoice_id", result.InvoiceID)
	RespondSuccess(w, http.StatusOK, replaceInvoiceResponse{
		InvoiceID:   result.InvoiceID,
		InvoiceURL:  result.InvoiceURL,
		Commission:  result.Commission,
		StoreAmount: result.StoreAmount,
	})
}
