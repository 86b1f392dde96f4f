package usecase

import "errors"

var (
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidOperationType = errors.New("invalid operation type")
	ErrNotFound             = errors.New("not found")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidReceipt       = errors.New("missing receipt or destination field")
	ErrSchemaMismatch       = errors.New("backup schema mismatch")
	ErrStorage              = errors.New("storage failure")
)
