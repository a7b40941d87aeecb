package notification

import "gorm.io/gorm"

func RunMigration(db *gorm.DB) error {
	return db.AutoMigrate(&Notification{}, &ShopActivity{})
}
