package refund

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wardrobe-api/wardrobe-shop-service/internal/auth"
	"github.com/wardrobe-api/wardrobe-shop-service/internal/ledger"
)

// Notifier is the best-effort notification and activity sink. Implementations
// must never fail the calling mutation.
type Notifier interface {
	Notify(userID uint, title, message, category string, referenceID uint)
	RecordActivity(shopID uint, activityType, description string)
}

type RefundRequest struct {
	ShopID     uint    `json:"shop" binding:"required"`
	RefundType string  `json:"type" binding:"required"`
	TargetID   uint    `json:"target_id" binding:"required"`
	ProductID  uint    `json:"product" binding:"required"`
	Quantity   int     `json:"quantity" binding:"required"`
	Amount     float64 `json:"amount" binding:"required"`
	Reason     string  `json:"reason"`
}

type ApprovalRequestInput struct {
	RequestType string `json:"request_type" binding:"required"`
	ShopID      uint   `json:"shop" binding:"required"`
	Reason      string `json:"reason"`
	CandidateID *uint  `json:"candidate"`
}

type RefundService interface {
	ApplyRefund(actor auth.Actor, req RefundRequest) (*Refund, error)
	ListRefunds(shopID uint) ([]Refund, error)

	CreateApprovalRequest(actor auth.Actor, req ApprovalRequestInput) (*ApprovalRequest, error)
	Approve(actor auth.Actor, requestID uint) (*ApprovalRequest, error)
	Reject(actor auth.Actor, requestID uint) (*ApprovalRequest, error)
	ListApprovalRequests(status string) ([]ApprovalRequest, error)
}

type refundService struct {
	storage  Storage
	notifier Notifier
	logger   *logrus.Entry
}

func NewService(storage Storage, notifier Notifier, log *logrus.Entry) RefundService {
	return &refundService{
		storage:  storage,
		notifier: notifier,
		logger:   log,
	}
}

// ApplyRefund validates and applies a refund against a prior sale or order.
// All preconditions are checked before any write; the bookkeeping then runs
// as one transaction: persist the refund, adjust the target's totals, restore
// product stock and retire the consumed approval.
func (s *refundService) ApplyRefund(actor auth.Actor, req RefundRequest) (*Refund, error) {
	if !auth.Allow(actor, auth.CapApplyRefund) {
		return nil, ErrUnauthorized
	}
	if req.RefundType != RefundTypeSale && req.RefundType != RefundTypeOrder {
		return nil, ErrInvalidTarget
	}
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	sh, err := s.storage.GetShopByID(req.ShopID)
	if err != nil {
		return nil, err
	}
	if actor.Role != auth.RoleSuperUser && sh.AdminID != actor.ID {
		return nil, ErrUnauthorized
	}

	var refund *Refund
	err = s.storage.WithinTransaction(func(tx Storage) error {
		approval, err := tx.FindOpenRefundApproval(req.ShopID)
		if err != nil {
			return err
		}
		if approval.RefundID != nil {
			return ErrRefundAlreadyApplied
		}

		product, err := tx.GetProductForUpdate(req.ProductID)
		if err != nil {
			return err
		}
		if req.Amount > product.Price*float64(req.Quantity) {
			return ErrExcessiveRefund
		}

		refund = &Refund{
			ShopID:            req.ShopID,
			RefundType:        req.RefundType,
			ProductID:         req.ProductID,
			Quantity:          req.Quantity,
			RefundAmount:      req.Amount,
			Reason:            req.Reason,
			Reference:         uuid.NewString(),
			ApprovalRequestID: approval.ID,
		}

		switch req.RefundType {
		case RefundTypeSale:
			if err := s.applySaleRefund(tx, refund, req); err != nil {
				return err
			}
		case RefundTypeOrder:
			if err := s.applyOrderRefund(tx, refund, req); err != nil {
				return err
			}
		}

		if err := tx.CreateRefund(refund); err != nil {
			return err
		}

		// Restore the refunded units; the only place stock is incremented.
		product.Quantity += req.Quantity
		if err := tx.SaveProduct(product); err != nil {
			return err
		}

		approval.Phase = PhaseCompleted
		approval.RefundID = &refund.ID
		return tx.SaveApproval(approval)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("refund %s applied for shop %d, amount %.2f", refund.Reference, refund.ShopID, refund.RefundAmount)
	s.notifier.Notify(actor.ID, "New Refund",
		fmt.Sprintf("A refund of %.2f has been applied (%s).", refund.RefundAmount, refund.Reference),
		"Refund", refund.ID)
	s.notifier.RecordActivity(refund.ShopID, "REFUND",
		fmt.Sprintf("Refund %s applied for %.2f against %s #%d",
			refund.Reference, refund.RefundAmount, refund.RefundType, req.TargetID))
	return refund, nil
}

func (s *refundService) applySaleRefund(tx Storage, refund *Refund, req RefundRequest) error {
	sale, err := tx.GetSaleForUpdate(req.TargetID)
	if err != nil {
		return err
	}
	if sale.ShopID != req.ShopID {
		return ErrTargetShopMismatch
	}

	sale.TotalAmount -= req.Amount
	sale.TotalRefundedAmount += req.Amount
	if sale.TotalRefundedAmount >= sale.TotalAmount {
		sale.IsRefunded = true
		now := time.Now().UTC()
		sale.RefundDate = &now
	}

	refund.SaleID = &sale.ID
	return tx.SaveSale(sale)
}

func (s *refundService) applyOrderRefund(tx Storage, refund *Refund, req RefundRequest) error {
	order, err := tx.GetOrderForUpdate(req.TargetID)
	if err != nil {
		return err
	}
	if order.ShopID != req.ShopID {
		return ErrTargetShopMismatch
	}

	order.TotalAmount -= req.Amount

	previouslyRefunded, err := tx.SumRefundedQuantityByOrder(order.ID)
	if err != nil {
		return err
	}
	if previouslyRefunded+req.Quantity >= order.ItemsQuantity() {
		order.Status = ledger.OrderStatusCancelled
	}

	refund.OrderID = &order.ID
	return tx.SaveOrder(order)
}

func (s *refundService) ListRefunds(shopID uint) ([]Refund, error) {
	return s.storage.ListRefundsByShop(shopID)
}

func (s *refundService) CreateApprovalRequest(actor auth.Actor, req ApprovalRequestInput) (*ApprovalRequest, error) {
	if req.RequestType != RequestTypeSeller && req.RequestType != RequestTypeRefund {
		return nil, ErrRequestNotFound
	}
	if !auth.Allow(actor, auth.CapManageShop) {
		return nil, ErrUnauthorized
	}
	if req.RequestType == RequestTypeSeller && req.CandidateID == nil {
		return nil, ErrMissingCandidate
	}
	if _, err := s.storage.GetShopByID(req.ShopID); err != nil {
		return nil, err
	}

	request := &ApprovalRequest{
		RequestType: req.RequestType,
		Reason:      req.Reason,
		RequesterID: actor.ID,
		ShopID:      req.ShopID,
		Status:      StatusPending,
		Phase:       PhasePending,
		CandidateID: req.CandidateID,
	}
	if err := s.storage.CreateApproval(request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *refundService) Approve(actor auth.Actor, requestID uint) (*ApprovalRequest, error) {
	request, err := s.storage.GetApprovalByID(requestID)
	if err != nil {
		return nil, err
	}
	if request.Decided() {
		return nil, ErrAlreadyDecided
	}

	switch request.RequestType {
	case RequestTypeSeller:
		if !auth.Allow(actor, auth.CapApproveSeller) {
			return nil, ErrUnauthorized
		}
		if request.CandidateID == nil {
			return nil, ErrMissingCandidate
		}

		err = s.storage.WithinTransaction(func(tx Storage) error {
			request.Status = StatusApproved
			request.Phase = PhaseCompleted
			if err := tx.SaveApproval(request); err != nil {
				return err
			}
			return tx.UpdateUserRole(*request.CandidateID, auth.RoleAdmin)
		})
		if err != nil {
			return nil, err
		}

		s.notifier.Notify(*request.CandidateID, "Seller Request Approved",
			fmt.Sprintf("Your seller request for shop %d has been approved.", request.ShopID),
			"ApprovalRequest", request.ID)

	case RequestTypeRefund:
		if !auth.Allow(actor, auth.CapApproveRefund) {
			return nil, ErrUnauthorized
		}
		if err := s.requireShopAdmin(actor, request.ShopID); err != nil {
			return nil, err
		}

		// Approval only opens the gate; the refund itself is a later
		// ApplyRefund call that consumes this record.
		request.Status = StatusApproved
		request.Phase = PhaseApproved
		if err := s.storage.SaveApproval(request); err != nil {
			return nil, err
		}

		s.notifier.Notify(request.RequesterID, "Request Approved",
			fmt.Sprintf("The refund request for shop %d has been approved.", request.ShopID),
			"ApprovalRequest", request.ID)
	}

	return request, nil
}

func (s *refundService) Reject(actor auth.Actor, requestID uint) (*ApprovalRequest, error) {
	request, err := s.storage.GetApprovalByID(requestID)
	if err != nil {
		return nil, err
	}
	if request.Decided() {
		return nil, ErrAlreadyDecided
	}

	switch request.RequestType {
	case RequestTypeSeller:
		if !auth.Allow(actor, auth.CapApproveSeller) {
			return nil, ErrUnauthorized
		}
	case RequestTypeRefund:
		if !auth.Allow(actor, auth.CapApproveRefund) {
			return nil, ErrUnauthorized
		}
		if err := s.requireShopAdmin(actor, request.ShopID); err != nil {
			return nil, err
		}
	}

	request.Status = StatusRejected
	request.Phase = PhaseRejected
	if err := s.storage.SaveApproval(request); err != nil {
		return nil, err
	}

	s.notifier.Notify(request.RequesterID, "Request Rejected",
		fmt.Sprintf("The request for shop %d has been rejected.", request.ShopID),
		"ApprovalRequest", request.ID)
	return request, nil
}

func (s *refundService) ListApprovalRequests(status string) ([]ApprovalRequest, error) {
	return s.storage.ListApprovals(status)
}

func (s *refundService) requireShopAdmin(actor auth.Actor, shopID uint) error {
	if actor.Role == auth.RoleSuperUser {
		return nil
	}
	sh, err := s.storage.GetShopByID(shopID)
	if err != nil {
		return err
	}
	if sh.AdminID != actor.ID {
		return ErrUnauthorized
	}
	return nil
}
