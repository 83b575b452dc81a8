package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidState      = errors.New("invalid order state")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// InsufficientFundsError reports how far the wallet fell short of the order
// total. The whole placement is rolled back when it is returned.
type InsufficientFundsError struct {
	Balance  float64
	Required float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %.2f, required %.2f", e.Balance, e.Required)
}
