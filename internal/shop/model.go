package shop

import (
	"gorm.io/gorm"

	"github.com/wardrobe-api/wardrobe-shop-service/internal/auth"
)

type Shop struct {
	gorm.Model
	Name        string `gorm:"size:255"`
	Location    string `gorm:"size:255"`
	Description string `gorm:"size:255"`
	AdminID     uint
	Admin       auth.User   `gorm:"foreignKey:AdminID"`
	Attendants  []auth.User `gorm:"many2many:shop_attendants;"`
}

type Category struct {
	gorm.Model
	Name        string `gorm:"size:100;uniqueIndex:idx_categories_name_shop"`
	ShopID      uint   `gorm:"uniqueIndex:idx_categories_name_shop"`
	ParentID    *uint
	Description string
}

type Product struct {
	gorm.Model
	CategoryID  uint
	Name        string `gorm:"size:255"`
	Description string
	Price       float64
	Quantity    int
	Size        string `gorm:"size:50"`
	Color       string `gorm:"size:50"`
}

// CategoryNode is a category with its resolved children, used for shop
// catalog tree listings.
type CategoryNode struct {
	Category      Category       `json:"category"`
	Subcategories []CategoryNode `json:"subcategories"`
	Products      []Product      `json:"products"`
}
