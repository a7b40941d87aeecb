package auth

import (
	"fmt"

	"gorm.io/gorm"
)

type Storage interface {
	CreateUser(user *User) error
	GetUserByUsername(username string) (*User, error)
	GetUserByID(id uint) (*User, error)
	ListUsers() ([]User, error)
	UpdatePassword(userID uint, passwordHash string, firstLogin bool) error
	UpdateUser(user *User) error
}

type UserStorage struct {
	db *gorm.DB
}

func NewStorage(db *gorm.DB) Storage {
	return &UserStorage{db: db}
}

func (s *UserStorage) CreateUser(user *User) error {
	result := s.db.Create(user)
	if result.Error != nil {
		return fmt.Errorf("failed to create user - %w", result.Error)
	}
	return nil
}

func (s *UserStorage) GetUserByUsername(username string) (*User, error) {
	var user User
	err := s.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserStorage) GetUserByID(id uint) (*User, error) {
	var user User
	err := s.db.First(&user, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserStorage) ListUsers() ([]User, error) {
	var users []User
	if err := s.db.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserStorage) UpdatePassword(userID uint, passwordHash string, firstLogin bool) error {
	result := s.db.Model(&User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"password_hash": passwordHash,
		"first_login":   firstLogin,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserStorage) UpdateUser(user *User) error {
	return s.db.Save(user).Error
}
