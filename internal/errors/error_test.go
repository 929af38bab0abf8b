package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")

	err := Remote("failed fetching products", cause)
	assert.ErrorIs(t, err, ErrRemoteFailure)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "RemoteFailure", Kind(err))

	err = Store("failed upserting products", cause)
	assert.ErrorIs(t, err, ErrStoreFailure)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "StoreFailure", Kind(err))
}

func TestKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil", err: nil, expected: ""},
		{name: "invalid quantity", err: ErrInvalidQuantity, expected: "InvalidQuantity"},
		{name: "stock exceeded", err: ErrStockExceeded, expected: "StockExceeded"},
		{name: "not in cart", err: ErrNotInCart, expected: "NotInCart"},
		{name: "product not found", err: ErrProductNotFound, expected: "ProductNotFound"},
		{name: "empty cart", err: ErrEmptyCart, expected: "EmptyCart"},
		{name: "unknown", err: errors.New("boom"), expected: "Unknown"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, Kind(test.err))
		})
	}
}
