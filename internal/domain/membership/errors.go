package membership

import "errors"

var (
	ErrMemberNotFound    = errors.New("member not found")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrInvalidTransition = errors.New("invalid account status transition")
)
