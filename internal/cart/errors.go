package cart

import "errors"

var (
	ErrLineNotFound = errors.New("cart line not found")
	ErrInvalidValue = errors.New("value must be a non-negative number")
	ErrEmptyCart    = errors.New("cart is empty, nothing to checkout")
)
