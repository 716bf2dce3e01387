package repository

import "errors"

// Sentinel errors returned (wrapped) by repository implementations.
// Callers classify with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
