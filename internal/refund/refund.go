package refund

import "github.com/sirupsen/logrus"

type RefundLogHook struct{}

func (h *RefundLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "Refund: " + entry.Message
	return nil
}

func (h *RefundLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
