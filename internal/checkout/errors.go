package checkout

import "errors"

var (
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrUserNotFound       = errors.New("no user exists for this email")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)
