package user

import "errors"

var (
	ErrEmailExists          = errors.New("email already registered")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidPaymentMethod = errors.New("payment method not supported")
	ErrInvalidAddress       = errors.New("shipping address is incomplete")
)
