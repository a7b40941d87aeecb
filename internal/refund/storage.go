package refund

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wardrobe-api/wardrobe-shop-service/internal/auth"
	"github.com/wardrobe-api/wardrobe-shop-service/internal/ledger"
	"github.com/wardrobe-api/wardrobe-shop-service/internal/shop"
)

type Storage interface {
	// WithinTransaction runs fn against a Storage bound to one database
	// transaction; any error rolls back every write made inside fn.
	WithinTransaction(fn func(tx Storage) error) error

	CreateApproval(request *ApprovalRequest) error
	GetApprovalByID(id uint) (*ApprovalRequest, error)
	// FindOpenRefundApproval returns an Approved refund request for the shop
	// that has not yet been consumed by a refund.
	FindOpenRefundApproval(shopID uint) (*ApprovalRequest, error)
	SaveApproval(request *ApprovalRequest) error
	ListApprovals(status string) ([]ApprovalRequest, error)

	CreateRefund(refund *Refund) error
	ListRefundsByShop(shopID uint) ([]Refund, error)
	SumRefundedQuantityByOrder(orderID uint) (int, error)

	GetShopByID(id uint) (*shop.Shop, error)
	GetProductForUpdate(id uint) (*shop.Product, error)
	SaveProduct(product *shop.Product) error
	GetSaleForUpdate(id uint) (*ledger.Sale, error)
	SaveSale(sale *ledger.Sale) error
	GetOrderForUpdate(id uint) (*ledger.Order, error)
	SaveOrder(order *ledger.Order) error

	UpdateUserRole(userID uint, role string) error
}

type RefundStorage struct {
	db *gorm.DB
}

func NewStorage(db *gorm.DB) Storage {
	return &RefundStorage{db: db}
}

func (s *RefundStorage) WithinTransaction(fn func(tx Storage) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&RefundStorage{db: tx})
	})
}

func (s *RefundStorage) CreateApproval(request *ApprovalRequest) error {
	result := s.db.Create(request)
	if result.Error != nil {
		return fmt.Errorf("failed to create approval request - %w", result.Error)
	}
	return nil
}

func (s *RefundStorage) GetApprovalByID(id uint) (*ApprovalRequest, error) {
	var request ApprovalRequest
	err := s.db.First(&request, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (s *RefundStorage) FindOpenRefundApproval(shopID uint) (*ApprovalRequest, error) {
	var request ApprovalRequest
	err := s.db.
		Where("shop_id = ? AND request_type = ? AND status = ? AND phase <> ?",
			shopID, RequestTypeRefund, StatusApproved, PhaseCompleted).
		Order("created_at").
		First(&request).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRefundNotApproved
		}
		return nil, err
	}
	return &request, nil
}

func (s *RefundStorage) SaveApproval(request *ApprovalRequest) error {
	return s.db.Save(request).Error
}

func (s *RefundStorage) ListApprovals(status string) ([]ApprovalRequest, error) {
	var requests []ApprovalRequest
	query := s.db.Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *RefundStorage) CreateRefund(refund *Refund) error {
	result := s.db.Create(refund)
	if result.Error != nil {
		return fmt.Errorf("failed to create refund - %w", result.Error)
	}
	return nil
}

func (s *RefundStorage) ListRefundsByShop(shopID uint) ([]Refund, error) {
	var refunds []Refund
	if err := s.db.Where("shop_id = ?", shopID).Find(&refunds).Error; err != nil {
		return nil, err
	}
	return refunds, nil
}

func (s *RefundStorage) SumRefundedQuantityByOrder(orderID uint) (int, error) {
	var total int64
	err := s.db.Model(&Refund{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("order_id = ?", orderID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

func (s *RefundStorage) GetShopByID(id uint) (*shop.Shop, error) {
	var sh shop.Shop
	err := s.db.First(&sh, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shop.ErrShopNotFound
		}
		return nil, err
	}
	return &sh, nil
}

func (s *RefundStorage) GetProductForUpdate(id uint) (*shop.Product, error) {
	var product shop.Product
	err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shop.ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *RefundStorage) SaveProduct(product *shop.Product) error {
	return s.db.Save(product).Error
}

func (s *RefundStorage) GetSaleForUpdate(id uint) (*ledger.Sale, error) {
	var sale ledger.Sale
	err := s.db.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "sales"}}).
		Preload("Items").First(&sale, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ledger.ErrSaleNotFound
		}
		return nil, err
	}
	return &sale, nil
}

func (s *RefundStorage) SaveSale(sale *ledger.Sale) error {
	return s.db.Omit("Items").Save(sale).Error
}

func (s *RefundStorage) GetOrderForUpdate(id uint) (*ledger.Order, error) {
	var order ledger.Order
	err := s.db.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "orders"}}).
		Preload("Items").First(&order, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ledger.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *RefundStorage) SaveOrder(order *ledger.Order) error {
	return s.db.Omit("Items").Save(order).Error
}

func (s *RefundStorage) UpdateUserRole(userID uint, role string) error {
	result := s.db.Model(&auth.User{}).Where("id = ?", userID).Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}
