package cart

import (
	"errors"
	"fmt"
)

var (
	ErrSessionMissing  = errors.New("cart session not found")
	ErrProductNotFound = errors.New("product not found")
	ErrItemNotInCart   = errors.New("item not found in cart")
	ErrValidation      = errors.New("validation error")
)

func errValidation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
