package service

import "errors"

var (
	ErrSessionIDRequired    = errors.New("session_id is required")
	ErrInvalidSession       = errors.New("could not retrieve checkout session")
	ErrCartCodeMissing      = errors.New("cart_code missing in session metadata")
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrEmailRequired        = errors.New("email is required")
	ErrBuyerNameRequired    = errors.New("buyer name is required")
	ErrAddressRequired      = errors.New("complete delivery address is required")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)
