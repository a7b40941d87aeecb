package ledger

import (
	"time"

	"gorm.io/gorm"
)

const (
	OrderStatusPending   = "Pending"
	OrderStatusIntransit = "Intransit"
	OrderStatusCompleted = "Completed"
	OrderStatusCancelled = "Cancelled"
)

// orderStatusRank orders the delivery states; status may only advance,
// except Cancelled which is reachable only through the refund processor.
var orderStatusRank = map[string]int{
	OrderStatusPending:   0,
	OrderStatusIntransit: 1,
	OrderStatusCompleted: 2,
}

type Order struct {
	gorm.Model
	ShopID           uint
	CustomerName     string `gorm:"size:255"`
	CustomerPhone    string `gorm:"size:20"`
	CustomerLocation string `gorm:"size:255"`
	Status           string `gorm:"size:20;default:Pending"`
	TotalAmount      float64
	Items            []OrderItem `gorm:"constraint:OnDelete:CASCADE;"`
}

type OrderItem struct {
	gorm.Model
	OrderID   uint
	ProductID uint
	Quantity  int
	// Price is the product price at order time and never changes afterwards.
	Price float64
}

type Sale struct {
	gorm.Model
	ShopID              uint
	AttendantID         uint
	TotalAmount         float64
	ModeOfPayment       string `gorm:"size:255;default:Cash"`
	IsComplete          bool   `gorm:"default:true"`
	IsRefunded          bool   `gorm:"default:false"`
	TotalRefundedAmount float64
	RefundDate          *time.Time
	Items               []SaleItem `gorm:"constraint:OnDelete:CASCADE;"`
}

type SaleItem struct {
	gorm.Model
	SaleID    uint
	ProductID uint
	Quantity  int
	// Price is the product price at sale time and never changes afterwards.
	Price float64
}

// ItemsQuantity is the total unit count across the order's line items.
func (o *Order) ItemsQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

func (s *Sale) ItemsQuantity() int {
	total := 0
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}

// CanAdvanceTo reports whether the order status may move to next through the
// normal delivery flow.
func (o *Order) CanAdvanceTo(next string) bool {
	currentRank, ok := orderStatusRank[o.Status]
	if !ok {
		return false
	}
	nextRank, ok := orderStatusRank[next]
	if !ok {
		return false
	}
	return nextRank > currentRank
}
