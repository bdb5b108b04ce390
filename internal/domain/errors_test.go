package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapStorage(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, WrapStorage("op", nil))
	})

	t.Run("domain errors pass through untouched", func(t *testing.T) {
		for _, err := range []error{
			ErrNotFound,
			ErrDuplicateEmail,
			NewInvalidInput("bad amount"),
			&AlreadySettledError{AmountPaid: 100, AmountToPay: 100},
			&ExceedsBalanceError{AmountToPay: 100, MaxAllowed: 20},
		} {
			assert.Equal(t, err, WrapStorage("op", err))
		}
	})

	t.Run("other errors get wrapped", func(t *testing.T) {
		cause := errors.New("connection reset")
		wrapped := WrapStorage("load customer", cause)

		var storageErr *StorageError
		assert.ErrorAs(t, wrapped, &storageErr)
		assert.Equal(t, "load customer", storageErr.Op)
		assert.ErrorIs(t, wrapped, cause)
	})
}

func TestErrorMessages(t *testing.T) {
	settled := &AlreadySettledError{AmountPaid: 1000, AmountToPay: 1000}
	assert.Contains(t, settled.Error(), "already fully paid")

	exceeded := &ExceedsBalanceError{AmountToPay: 1000, MaxAllowed: 800}
	assert.Contains(t, exceeded.Error(), "800.00")

	invalid := NewInvalidInput("payment amount must be a positive number")
	assert.Contains(t, invalid.Error(), "invalid input")
}
