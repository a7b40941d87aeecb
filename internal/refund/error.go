package refund

import "errors"

var (
	ErrRefundNotApproved    = errors.New("refund request is not approved by an admin")
	ErrRefundAlreadyApplied = errors.New("approval request already has a refund applied")
	ErrExcessiveRefund      = errors.New("refund amount cannot exceed item value")
	ErrUnauthorized         = errors.New("actor lacks required capability")
	ErrAlreadyDecided       = errors.New("approval request has already been decided")
	ErrRequestNotFound      = errors.New("approval request not found")
	ErrRefundNotFound       = errors.New("refund not found")
	ErrInvalidTarget        = errors.New("refund must target exactly one sale or order")
	ErrTargetShopMismatch   = errors.New("refund target belongs to another shop")
	ErrInvalidQuantity      = errors.New("quantity must be greater than 0")
	ErrInvalidAmount        = errors.New("refund amount must be positive")
	ErrMissingCandidate     = errors.New("seller request must name a candidate user")
)
