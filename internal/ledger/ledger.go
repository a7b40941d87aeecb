package ledger

import "github.com/sirupsen/logrus"

type LedgerLogHook struct{}

func (h *LedgerLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "Ledger: " + entry.Message
	return nil
}

func (h *LedgerLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
