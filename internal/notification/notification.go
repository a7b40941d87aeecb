package notification

import "github.com/sirupsen/logrus"

type NotificationLogHook struct{}

func (h *NotificationLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "Notification: " + entry.Message
	return nil
}

func (h *NotificationLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
