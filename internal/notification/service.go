package notification

import (
	"time"

	"github.com/sirupsen/logrus"
)

const recentActivityLimit = 10

type NotificationService interface {
	// Notify persists a notification for the user. It never returns an
	// error: a failed notification must not fail the triggering mutation.
	Notify(userID uint, title, message, category string, referenceID uint)
	// RecordActivity appends an entry to the shop's activity feed, with the
	// same best-effort contract as Notify.
	RecordActivity(shopID uint, activityType, description string)

	ListForUser(userID uint) ([]Notification, error)
	MarkRead(userID, notificationID uint) error
	RecentActivities(shopID uint) ([]ShopActivity, error)
}

type notificationService struct {
	storage Storage
	mailer  Mailer
	logger  *logrus.Entry
}

// NewService builds the sink. mailer may be nil; email delivery is then
// skipped entirely.
func NewService(storage Storage, mailer Mailer, log *logrus.Entry) NotificationService {
	return &notificationService{
		storage: storage,
		mailer:  mailer,
		logger:  log,
	}
}

func (s *notificationService) Notify(userID uint, title, message, category string, referenceID uint) {
	n := &Notification{
		UserID:      userID,
		Title:       title,
		Message:     message,
		Category:    category,
		ReferenceID: referenceID,
		Read:        false,
		Timestamp:   time.Now().UTC(),
	}
	if err := s.storage.CreateNotification(n); err != nil {
		s.logger.Errorf("failed to persist notification for user %d: %v", userID, err)
		return
	}

	if s.mailer == nil {
		return
	}
	email, err := s.storage.GetUserEmail(userID)
	if err != nil || email == "" {
		return
	}
	if err := s.mailer.Send(email, title, message); err != nil {
		s.logger.Warnf("failed to email notification %d to %s: %v", n.ID, email, err)
	}
}

func (s *notificationService) RecordActivity(shopID uint, activityType, description string) {
	a := &ShopActivity{
		ActivityType: activityType,
		ShopID:       shopID,
		Description:  description,
		Timestamp:    time.Now().UTC(),
	}
	if err := s.storage.CreateActivity(a); err != nil {
		s.logger.Errorf("failed to record activity for shop %d: %v", shopID, err)
	}
}

func (s *notificationService) ListForUser(userID uint) ([]Notification, error) {
	return s.storage.ListNotificationsByUser(userID)
}

func (s *notificationService) MarkRead(userID, notificationID uint) error {
	n, err := s.storage.GetNotificationByID(notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return ErrNotRecipient
	}
	return s.storage.MarkRead(notificationID)
}

func (s *notificationService) RecentActivities(shopID uint) ([]ShopActivity, error) {
	return s.storage.ListActivitiesByShop(shopID, recentActivityLimit)
}
