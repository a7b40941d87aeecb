package ledger

import "errors"

var (
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrNoItems            = errors.New("transaction must include at least one item")
	ErrInvalidQuantity    = errors.New("quantity must be greater than 0")
	ErrInvalidPhone       = errors.New("invalid phone number")
	ErrUnauthorized       = errors.New("actor lacks required capability")
	ErrWrongShop          = errors.New("attendant is not assigned to this shop")
	ErrSaleNotFound       = errors.New("sale not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidStatusMove  = errors.New("order status may only advance")
	ErrCancelledViaRefund = errors.New("orders are cancelled through refunds only")
)
