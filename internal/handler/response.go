package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tindahan/ledger-service/internal/domain"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondSuccess(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Error:   nil,
	})
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, details any) {
	RespondJSON(w, appErr.Status, APIResponse{
		Success: false,
		Data:    nil,
		Error: &APIError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		},
	})
}

func RespondValidationError(w http.ResponseWriter, fields []FieldError) {
	RespondAppError(w, ErrValidationFailed, fields)
}

func RespondDomainError(w http.ResponseWriter, err error) {
	var appErr *AppError
	var details any

	switch {
	case errors.Is(err, domain.ErrNotFound):
		appErr = ErrResourceNotFound
	case errors.Is(err, domain.ErrInvalidRate):
		appErr = ErrInvalidRate
	case errors.Is(err, domain.ErrZeroAdjustment):
		appErr = ErrValidationFailed
		details = err.Error()
	case errors.Is(err, domain.ErrValidation):
		appErr = ErrValidationFailed
		details = err.Error()
	case errors.Is(err, domain.ErrInvalidState):
		appErr = ErrInvalidState
		details = err.Error()
	case errors.Is(err, domain.ErrImmutableTransaction):
		appErr = ErrImmutableTransaction
	case errors.Is(err, domain.ErrConflict):
		appErr = ErrLedgerConflict
	case errors.Is(err, domain.ErrUnauthorized):
		appErr = ErrInvalidToken
	case errors.Is(err, domain.ErrProvider):
		// Provider internals are logged, never echoed to callers.
		slog.Error("provider error", "error", err)
		appErr = ErrProviderFailure
	default:
		slog.Error("unhandled domain error", "error", err)
		appErr = ErrInternalError
	}

	RespondAppError(w, appErr, details)
}
