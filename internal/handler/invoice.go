package handler

import (
	"net/http"
	"time"

	"github.com/tindahan/ledger-service/internal/logging"
	"github.com/tindahan/ledger-service/internal/service"
)

type InvoiceHandler struct {
	issuance *service.IssuanceService
}

func NewInvoiceHandler(issuance *service.IssuanceService) *InvoiceHandler {
	return &InvoiceHandler{issuance: issuance}
}

type createInvoiceRequest struct {
	OrderNumber string  `json:"order_number" validate:"required"`
	OrderID     string  `json:"order_id"`
	Total       float64 `json:"total" validate:"required,gt=0"`
	Method      string  `json:"method" validate:"required,oneof=gcash paymaya online"`
	Store       struct {
		ID    string `json:"id" validate:"required"`
		Name  string `json:"name"`
		Email string `json:"email" validate:"omitempty,email"`
	} `json:"store" validate:"required"`
	Customer struct {
		Name  string `json:"name"`
		Email string `json:"email" validate:"omitempty,email"`
		Phone string `json:"phone"`
	} `json:"customer"`
	Items []struct {
		Name     string  `json:"name" validate:"required"`
		Quantity int     `json:"quantity" validate:"required,gt=0"`
		Price    float64 `json:"price" validate:"gte=0"`
	} `json:"items" validate:"omitempty,dive"`
}

type createInvoiceResponse struct {
	InvoiceID   string  `json:"invoice_id"`
	InvoiceURL  string  `json:"invoice_url"`
	ExpiryDate  string  `json:"expiry_date"`
	Commission  float64 `json:"commission"`
	StoreAmount float64 `json:"store_amount"`
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req createInvoiceRequest
	fields, err := decodeJSONBody(r, &req)
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	issueReq := service.IssueRequest{
		OrderNumber: req.OrderNumber,
		OrderID:     req.OrderID,
		Total:       req.Total,
		Method:      req.Method,
		Store: service.IssueStore{
			ID:    req.Store.ID,
			Name:  req.Store.Name,
			Email: req.Store.Email,
		},
		Customer: service.IssueCustomer{
			Name:  req.Customer.Name,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
		},
	}
	for _, it := range req.Items {
		issueReq.Items = append(issueReq.Items, service.IssueItem{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}

	result, err := h.issuance.Issue(r.Context(), issueReq)
	if err != nil {
		log.Error("invoice issuance failed", "order_number", req.OrderNumber, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, createInvoiceResponse{
		InvoiceID:   result.InvoiceID,
		InvoiceURL:  result.InvoiceURL,
		ExpiryDate:  result.ExpiryDate.Format(time.RFC3339),
		Commission:  result.Commission,
		StoreAmount: result.StoreAmount,
	})
}
