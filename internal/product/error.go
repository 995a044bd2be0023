package product

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrSlugExists      = errors.New("product slug already in use")
	ErrValidation      = errors.New("validation error")
)

func errValidation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
