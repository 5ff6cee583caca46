package handler

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/tindahan/ledger-service/internal/domain"
	"github.com/tindahan/ledger-service/internal/logging"
	"github.com/tindahan/ledger-service/internal/service"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	processor     *service.WebhookProcessor
	callbackToken string
}

func NewWebhookHandler(processor *service.WebhookProcessor, callbackToken string) *WebhookHandler {
	return &WebhookHandler{processor: processor, callbackToken: callbackToken}
}

type webhookResponse struct {
	Received   bool `json:"received"`
	Idempotent bool `json:"idempotent,omitempty"`
}

// HandleInvoice receives payment status callbacks from the provider.
// After the token check the provider gets a 200 for anything except a
// transient store failure, so it only retries when a retry can help.
func (h *WebhookHandler) HandleInvoice(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	token := r.Header.Get("x-callback-token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.callbackToken)) != 1 {
		log.Warn("webhook rejected: bad callback token")
		RespondAppError(w, ErrInvalidCallback, nil)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	var payload service.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Warn("webhook rejected: malformed body", "error", err)
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if payload.ID == "" {
		log.Warn("webhook rejected: missing invoice id")
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	outcome, err := h.processor.Process(r.Context(), payload)
	if err != nil {
		if isBusinessError(err) {
			log.Error("webhook processing failed", "invoice_id", payload.ID, "error", err)
			RespondSuccess(w, http.StatusOK, webhookResponse{Received: true})
			return
		}
		log.Error("webhook processing failed, provider should retry", "invoice_id", payload.ID, "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	if outcome.Idempotent {
		log.Info("webhook replay ignored", "invoice_id", payload.ID)
		RespondSuccess(w, http.StatusOK, webhookResponse{Received: true, Idempotent: true})
		return
	}

	RespondSuccess(w, http.StatusOK, webhookResponse{Received: true})
}

func isBusinessError(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidState) ||
		errors.Is(err, domain.ErrImmutableTransaction)
}
