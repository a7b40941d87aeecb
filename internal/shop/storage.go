package shop

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/wardrobe-api/wardrobe-shop-service/internal/auth"
)

type Storage interface {
	CreateShop(shop *Shop) error
	GetShopByID(id uint) (*Shop, error)
	ListShops() ([]Shop, error)
	ListShopsByAdmin(adminID uint) ([]Shop, error)
	SaveShop(shop *Shop) error
	DeleteShop(id uint) error
	ReplaceAttendants(shop *Shop, attendants []auth.User) error
	GetUsersByIDs(ids []uint) ([]auth.User, error)

	CreateCategory(category *Category) error
	GetCategoryByID(id uint) (*Category, error)
	GetCategoryByNameAndShop(name string, shopID uint) (*Category, error)
	ListCategoriesByShop(shopID uint) ([]Category, error)
	ListSubcategories(parentID uint) ([]Category, error)
	SaveCategory(category *Category) error
	DeleteCategoryTree(categoryIDs []uint) error

	CreateProduct(product *Product) error
	GetProductByID(id uint) (*Product, error)
	ListProductsByCategory(categoryID uint) ([]Product, error)
	ListProductsByShop(shopID uint) ([]Product, error)
	SaveProduct(product *Product) error
	DeleteProduct(id uint) error
}

type CatalogStorage struct {
	db *gorm.DB
}

func NewStorage(db *gorm.DB) Storage {
	return &CatalogStorage{db: db}
}

func (s *CatalogStorage) CreateShop(shop *Shop) error {
	result := s.db.Create(shop)
	if result.Error != nil {
		return fmt.Errorf("failed to create shop - %w", result.Error)
	}
	return nil
}

func (s *CatalogStorage) GetShopByID(id uint) (*Shop, error) {
	var shop Shop
	err := s.db.Preload("Attendants").First(&shop, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrShopNotFound
		}
		return nil, err
	}
	return &shop, nil
}

func (s *CatalogStorage) ListShops() ([]Shop, error) {
	var shops []Shop
	if err := s.db.Preload("Attendants").Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

func (s *CatalogStorage) ListShopsByAdmin(adminID uint) ([]Shop, error) {
	var shops []Shop
	if err := s.db.Preload("Attendants").Where("admin_id = ?", adminID).Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

func (s *CatalogStorage) SaveShop(shop *Shop) error {
	return s.db.Omit("Attendants").Save(shop).Error
}

// DeleteShop removes the shop together with its categories and products in
// one transaction; a deleted shop leaves no orphaned catalog rows behind.
func (s *CatalogStorage) DeleteShop(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		categoryIDs := tx.Model(&Category{}).Select("id").Where("shop_id = ?", id)
		if err := tx.Unscoped().Where("category_id IN (?)", categoryIDs).Delete(&Product{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("shop_id = ?", id).Delete(&Category{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Shop{}, id).Error
	})
}

func (s *CatalogStorage) ReplaceAttendants(shop *Shop, attendants []auth.User) error {
	return s.db.Model(shop).Association("Attendants").Replace(attendants)
}

func (s *CatalogStorage) GetUsersByIDs(ids []uint) ([]auth.User, error) {
	var users []auth.User
	if err := s.db.Where("id IN (?)", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *CatalogStorage) CreateCategory(category *Category) error {
	result := s.db.Create(category)
	if result.Error != nil {
		return fmt.Errorf("failed to create category - %w", result.Error)
	}
	return nil
}

func (s *CatalogStorage) GetCategoryByID(id uint) (*Category, error) {
	var category Category
	err := s.db.First(&category, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (s *CatalogStorage) GetCategoryByNameAndShop(name string, shopID uint) (*Category, error) {
	var category Category
	err := s.db.Where("name = ? AND shop_id = ?", name, shopID).First(&category).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (s *CatalogStorage) ListCategoriesByShop(shopID uint) ([]Category, error) {
	var categories []Category
	if err := s.db.Where("shop_id = ?", shopID).Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *CatalogStorage) ListSubcategories(parentID uint) ([]Category, error) {
	var categories []Category
	if err := s.db.Where("parent_id = ?", parentID).Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *CatalogStorage) SaveCategory(category *Category) error {
	return s.db.Save(category).Error
}

// DeleteCategoryTree removes the given categories and all their products in
// one transaction. Categories are hard-deleted: a soft-deleted row would
// still occupy the (name, shop) unique index and block re-creating a
// category under the old name.
func (s *CatalogStorage) DeleteCategoryTree(categoryIDs []uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("category_id IN (?)", categoryIDs).Delete(&Product{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("id IN (?)", categoryIDs).Delete(&Category{}).Error
	})
}

func (s *CatalogStorage) CreateProduct(product *Product) error {
	result := s.db.Create(product)
	if result.Error != nil {
		return fmt.Errorf("failed to create product - %w", result.Error)
	}
	return nil
}

func (s *CatalogStorage) GetProductByID(id uint) (*Product, error) {
	var product Product
	err := s.db.First(&product, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *CatalogStorage) ListProductsByCategory(categoryID uint) ([]Product, error) {
	var products []Product
	if err := s.db.Where("category_id = ?", categoryID).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (s *CatalogStorage) ListProductsByShop(shopID uint) ([]Product, error) {
	var products []Product
	err := s.db.
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("categories.shop_id = ?", shopID).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (s *CatalogStorage) SaveProduct(product *Product) error {
	return s.db.Save(product).Error
}

func (s *CatalogStorage) DeleteProduct(id uint) error {
	return s.db.Delete(&Product{}, id).Error
}
