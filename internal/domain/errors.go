package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrValidation           = errors.New("validation failed")
	ErrConflict             = errors.New("invoice id already recorded for a different order")
	ErrInvalidState         = errors.New("operation not allowed in current transaction status")
	ErrImmutableTransaction = errors.New("settled transaction fields are immutable")
	ErrProvider             = errors.New("invoice provider request failed")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidRate          = errors.New("commission rate must be between 0 and 1")
	ErrZeroAdjustment       = errors.New("adjustment delta must be non-zero")
)
