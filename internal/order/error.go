package order

import "errors"

var (
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrMissingAddress       = errors.New("no shipping address on file")
	ErrMissingPaymentMethod = errors.New("no payment method selected")
	ErrOrderNotFound        = errors.New("order not found")
	ErrNotYetPaid           = errors.New("order is not paid yet")
	ErrNotCashOnDelivery    = errors.New("order is not cash on delivery")
)
