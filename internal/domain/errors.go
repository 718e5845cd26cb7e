package domain

import "errors"

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrCartNotFound     = errors.New("cart not found")
	ErrEmptyCart        = errors.New("cart is empty, nothing to order")
	ErrInvalidArgument  = errors.New("invalid argument")
)

// IsNotFound reports whether err refers to a missing category, item or cart.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrCartNotFound)
}
