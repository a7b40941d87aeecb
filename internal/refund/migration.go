package refund

import "gorm.io/gorm"

func RunMigration(db *gorm.DB) error {
	return db.AutoMigrate(&ApprovalRequest{}, &Refund{})
}
