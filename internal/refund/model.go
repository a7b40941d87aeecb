package refund

import "gorm.io/gorm"

const (
	RefundTypeOrder = "Order"
	RefundTypeSale  = "Sale"

	RequestTypeSeller = "Seller"
	RequestTypeRefund = "Refund"

	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"

	PhasePending   = "Pending"
	PhaseApproved  = "Approved"
	PhaseRejected  = "Rejected"
	PhaseCompleted = "Completed"
)

type Refund struct {
	gorm.Model
	ShopID       uint
	RefundType   string `gorm:"size:10"`
	SaleID       *uint
	OrderID      *uint
	ProductID    uint
	Quantity     int
	RefundAmount float64
	Reason       string
	Reference    string `gorm:"size:36"`
	// Each refund consumes exactly one approved request; the unique index is
	// what stops a resubmitted refund from double-restoring stock.
	ApprovalRequestID uint `gorm:"uniqueIndex"`
}

type ApprovalRequest struct {
	gorm.Model
	RequestType string `gorm:"size:20"`
	Reason      string
	RequesterID uint
	ShopID      uint
	Status      string `gorm:"size:20;default:Pending"`
	Phase       string `gorm:"size:20;default:Pending"`
	RefundID    *uint
	// CandidateID is the user whose role a Seller request elevates.
	CandidateID *uint
}

func (r *ApprovalRequest) Decided() bool {
	return r.Status != StatusPending
}
