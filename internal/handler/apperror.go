package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken     = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken     = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidCallback  = &AppError{http.StatusUnauthorized, "INVALID_CALLBACK_TOKEN", "Callback token is invalid"}
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInvalidState         = &AppError{http.StatusBadRequest, "INVALID_STATE", "Operation not allowed for the transaction's current status"}
	ErrImmutableTransaction = &AppError{http.StatusConflict, "IMMUTABLE_TRANSACTION", "Settled transactions cannot be modified"}
	ErrLedgerConflict       = &AppError{http.StatusConflict, "LEDGER_CONFLICT", "Invoice id already recorded for a different order"}
	ErrProviderFailure      = &AppError{http.StatusInternalServerError, "PROVIDER_UNAVAILABLE", "Payment provider request failed"}
	ErrInvalidRate          = &AppError{http.StatusBadRequest, "INVALID_RATE", "Commission rate must be between 0 and 1"}
)
