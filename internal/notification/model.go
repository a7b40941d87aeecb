package notification

import (
	"time"

	"gorm.io/gorm"
)

type Notification struct {
	gorm.Model
	UserID      uint
	Title       string `gorm:"size:255"`
	Message     string
	Category    string `gorm:"size:100"`
	ReferenceID uint
	Read        bool `gorm:"default:false"`
	Timestamp   time.Time
}

type ShopActivity struct {
	gorm.Model
	ActivityType string `gorm:"size:20"`
	ShopID       uint
	Description  string
	Timestamp    time.Time
}
