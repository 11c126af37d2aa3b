package payment

import "errors"

var (
	ErrPaymentFailed    = errors.New("payment failed")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrUnknownIntent    = errors.New("unknown payment intent")
	ErrMethodNotFound   = errors.New("payment method not found")
)
