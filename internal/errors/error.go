package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrStockExceeded   = errors.New("quantity exceeds available stock")
	ErrNotInCart       = errors.New("product is not in cart")
	ErrProductNotFound = errors.New("product not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrRemoteFailure   = errors.New("remote failure")
	ErrStoreFailure    = errors.New("store failure")
)

// Remote wraps cause as a remote failure keeping cause reachable by errors.Is.
func Remote(msg string, cause error) error {
	return fmt.Errorf("%w: %s with error=%w", ErrRemoteFailure, msg, cause)
}

// Store wraps cause as a local persistence failure.
func Store(msg string, cause error) error {
	return fmt.Errorf("%w: %s with error=%w", ErrStoreFailure, msg, cause)
}

// Kind names the taxonomy entry err belongs to, or "Unknown".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidQuantity):
		return "InvalidQuantity"
	case errors.Is(err, ErrStockExceeded):
		return "StockExceeded"
	case errors.Is(err, ErrNotInCart):
		return "NotInCart"
	case errors.Is(err, ErrProductNotFound):
		return "ProductNotFound"
	case errors.Is(err, ErrEmptyCart):
		return "EmptyCart"
	case errors.Is(err, ErrRemoteFailure):
		return "RemoteFailure"
	case errors.Is(err, ErrStoreFailure):
		return "StoreFailure"
	default:
		return "Unknown"
	}
}
