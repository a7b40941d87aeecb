package ledger

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wardrobe-api/wardrobe-shop-service/internal/shop"
)

type Storage interface {
	// WithinTransaction runs fn against a Storage bound to one database
	// transaction; any error rolls back every write made inside fn.
	WithinTransaction(fn func(tx Storage) error) error

	GetProductForUpdate(id uint) (*shop.Product, error)
	SaveProduct(product *shop.Product) error
	GetShopByID(id uint) (*shop.Shop, error)

	CreateSale(sale *Sale) error
	GetSaleByID(id uint) (*Sale, error)
	ListSalesByShop(shopID uint) ([]Sale, error)

	CreateOrder(order *Order) error
	GetOrderByID(id uint) (*Order, error)
	ListOrdersByShop(shopID uint) ([]Order, error)
	SaveOrder(order *Order) error

	ShopItemsSold(shopID uint) (int, error)
	ShopRevenue(shopID uint) (float64, error)
}

type LedgerStorage struct {
	db *gorm.DB
}

func NewStorage(db *gorm.DB) Storage {
	return &LedgerStorage{db: db}
}

func (s *LedgerStorage) WithinTransaction(fn func(tx Storage) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&LedgerStorage{db: tx})
	})
}

// GetProductForUpdate locks the product row for the rest of the enclosing
// transaction so concurrent stock mutations are serialized by the database.
func (s *LedgerStorage) GetProductForUpdate(id uint) (*shop.Product, error) {
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

func (s *LedgerStorage) SaveProduct(product *shop.Product) error {
	return s.db.Save(product).Error
}

func (s *LedgerStorage) GetShopByID(id uint) (*shop.Shop, error) {
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

func (s *LedgerStorage) CreateSale(sale *Sale) error {
	result := s.db.Create(sale)
	if result.Error != nil {
		return fmt.Errorf("failed to create sale - %w", result.Error)
	}
	return nil
}

func (s *LedgerStorage) GetSaleByID(id uint) (*Sale, error) {
	var sale Sale
	err := s.db.Preload("Items").First(&sale, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return &sale, nil
}

func (s *LedgerStorage) ListSalesByShop(shopID uint) ([]Sale, error) {
	var sales []Sale
	if err := s.db.Preload("Items").Where("shop_id = ?", shopID).Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (s *LedgerStorage) CreateOrder(order *Order) error {
	result := s.db.Create(order)
	if result.Error != nil {
		return fmt.Errorf("failed to create order - %w", result.Error)
	}
	return nil
}

func (s *LedgerStorage) GetOrderByID(id uint) (*Order, error) {
	var order Order
	err := s.db.Preload("Items").First(&order, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *LedgerStorage) ListOrdersByShop(shopID uint) ([]Order, error) {
	var orders []Order
	if err := s.db.Preload("Items").Where("shop_id = ?", shopID).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *LedgerStorage) SaveOrder(order *Order) error {
	return s.db.Omit("Items").Save(order).Error
}

func (s *LedgerStorage) ShopItemsSold(shopID uint) (int, error) {
	var saleQty, orderQty int64

	err := s.db.Model(&SaleItem{}).
		Select("COALESCE(SUM(sale_items.quantity), 0)").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sales.shop_id = ?", shopID).
		Scan(&saleQty).Error
	if err != nil {
		return 0, err
	}

	err = s.db.Model(&OrderItem{}).
		Select("COALESCE(SUM(order_items.quantity), 0)").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.shop_id = ?", shopID).
		Scan(&orderQty).Error
	if err != nil {
		return 0, err
	}

	return int(saleQty + orderQty), nil
}

func (s *LedgerStorage) ShopRevenue(shopID uint) (float64, error) {
	var saleTotal, orderTotal float64

	err := s.db.Model(&Sale{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("shop_id = ?", shopID).
		Scan(&saleTotal).Error
	if err != nil {
		return 0, err
	}

	err = s.db.Model(&Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("shop_id = ?", shopID).
		Scan(&orderTotal).Error
	if err != nil {
		return 0, err
	}

	return saleTotal + orderTotal, nil
}
