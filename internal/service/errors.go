package service

import "errors"

var (
	// ErrCheckoutConflict means the cart changed while the order was being
	// placed. Nothing was written; the client may reload the cart and retry.
	ErrCheckoutConflict = errors.New("cart changed during checkout")
	// ErrCheckoutFailed means the order could not be persisted and every write
	// of the attempt was rolled back.
	ErrCheckoutFailed = errors.New("checkout failed")

	ErrMissingUser     = errors.New("user id is required")
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 99")
	ErrInvalidProduct  = errors.New("product id must be positive")
)
