package shop

import "errors"

var (
	ErrShopNotFound       = errors.New("shop not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrUnauthorized       = errors.New("actor lacks required capability")
	ErrNotShopAdmin       = errors.New("actor is not the shop admin")
	ErrDuplicateCategory  = errors.New("category name already used in this shop")
	ErrCategoryCycle      = errors.New("category parent would form a cycle")
	ErrParentShopMismatch = errors.New("parent category belongs to another shop")
	ErrInvalidPrice       = errors.New("price must be positive")
	ErrInvalidQuantity    = errors.New("quantity cannot be negative")
	ErrEmptyName          = errors.New("name is required")
)
