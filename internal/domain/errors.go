package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("customer not found")
	ErrDuplicateEmail       = errors.New("customer with this email already exists")
	ErrGatewayDeclined      = errors.New("transaction declined by payment gateway")
	ErrSettlementInProgress = errors.New("another settlement is in progress for this customer")
)

// InvalidInputError rejects a request before any mutation. The caller can
// correct the input and retry.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

func NewInvalidInput(format string, args ...any) *InvalidInputError {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}

// AlreadySettledError means the customer has already paid the full cycle
// amount; no further payment is accepted until the cycle is reactivated.
type AlreadySettledError struct {
	AmountPaid  float64
	AmountToPay float64
}

func (e *AlreadySettledError) Error() string {
	return fmt.Sprintf("customer is already fully paid (%.2f paid out of %.2f)", e.AmountPaid, e.AmountToPay)
}

// ExceedsBalanceError means the payment would push amountPaid past
// amountToPay. MaxAllowed tells the caller the largest acceptable payment.
type ExceedsBalanceError struct {
	AmountToPay float64
	MaxAllowed  float64
}

func (e *ExceedsBalanceError) Error() string {
	return fmt.Sprintf("payment would exceed the total amount to pay (%.2f), maximum allowed payment: %.2f", e.AmountToPay, e.MaxAllowed)
}

// StorageError is an opaque persistence fault. The operation it interrupted
// is fatal as a unit: no partial writes survive.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// WrapStorage tags a storage fault with the operation it broke, passing
// domain errors through untouched.
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		invalid  *InvalidInputError
		settled  *AlreadySettledError
		exceeded *ExceedsBalanceError
	)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateEmail) ||
		errors.As(err, &invalid) || errors.As(err, &settled) || errors.As(err, &exceeded) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
