package notification

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/wardrobe-api/wardrobe-shop-service/internal/auth"
)

type Storage interface {
	CreateNotification(n *Notification) error
	ListNotificationsByUser(userID uint) ([]Notification, error)
	GetNotificationByID(id uint) (*Notification, error)
	MarkRead(id uint) error

	CreateActivity(a *ShopActivity) error
	ListActivitiesByShop(shopID uint, limit int) ([]ShopActivity, error)

	GetUserEmail(userID uint) (string, error)
}

type NotificationStorage struct {
	db *gorm.DB
}

func NewStorage(db *gorm.DB) Storage {
	return &NotificationStorage{db: db}
}

func (s *NotificationStorage) CreateNotification(n *Notification) error {
	result := s.db.Create(n)
	if result.Error != nil {
		return fmt.Errorf("failed to create notification - %w", result.Error)
	}
	return nil
}

func (s *NotificationStorage) ListNotificationsByUser(userID uint) ([]Notification, error) {
	var notifications []Notification
	err := s.db.Where("user_id = ?", userID).Order("timestamp DESC").Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *NotificationStorage) GetNotificationByID(id uint) (*Notification, error) {
	var n Notification
	err := s.db.First(&n, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (s *NotificationStorage) MarkRead(id uint) error {
	result := s.db.Model(&Notification{}).Where("id = ?", id).Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationStorage) CreateActivity(a *ShopActivity) error {
	result := s.db.Create(a)
	if result.Error != nil {
		return fmt.Errorf("failed to create shop activity - %w", result.Error)
	}
	return nil
}

func (s *NotificationStorage) ListActivitiesByShop(shopID uint, limit int) ([]ShopActivity, error) {
	var activities []ShopActivity
	err := s.db.Where("shop_id = ?", shopID).Order("timestamp DESC").Limit(limit).Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

func (s *NotificationStorage) GetUserEmail(userID uint) (string, error) {
	var user auth.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return "", err
	}
	return user.Email, nil
}
