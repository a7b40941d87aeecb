package notification

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationStorage struct {
	nextID        uint
	notifications map[uint]*Notification
	activities    []ShopActivity
	emails        map[uint]string

	failCreate bool
}

func newFakeNotificationStorage() *fakeNotificationStorage {
	return &fakeNotificationStorage{
		nextID:        1,
		notifications: make(map[uint]*Notification),
		emails:        make(map[uint]string),
	}
}

func (f *fakeNotificationStorage) CreateNotification(n *Notification) error {
	if f.failCreate {
		return errors.New("storage down")
	}
	n.ID = f.nextID
	f.nextID++
	copied := *n
	f.notifications[n.ID] = &copied
	return nil
}

func (f *fakeNotificationStorage) ListNotificationsByUser(userID uint) ([]Notification, error) {
	var out []Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNotificationStorage) GetNotificationByID(id uint) (*Notification, error) {
	n, ok := f.notifications[id]
	if !ok {
		return nil, ErrNotificationNotFound
	}
	copied := *n
	return &copied, nil
}

func (f *fakeNotificationStorage) MarkRead(id uint) error {
	n, ok := f.notifications[id]
	if !ok {
		return ErrNotificationNotFound
	}
	n.Read = true
	return nil
}

func (f *fakeNotificationStorage) CreateActivity(a *ShopActivity) error {
	if f.failCreate {
		return errors.New("storage down")
	}
	f.activities = append(f.activities, *a)
	return nil
}

func (f *fakeNotificationStorage) ListActivitiesByShop(shopID uint, limit int) ([]ShopActivity, error) {
	var out []ShopActivity
	for i := len(f.activities) - 1; i >= 0 && len(out) < limit; i-- {
		if f.activities[i].ShopID == shopID {
			out = append(out, f.activities[i])
		}
	}
	return out, nil
}

func (f *fakeNotificationStorage) GetUserEmail(userID uint) (string, error) {
	return f.emails[userID], nil
}

type recordingMailer struct {
	sent []string
	err  error
}

func (m *recordingMailer) Send(to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

func newTestLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func TestNotifyPersistsForUser(t *testing.T) {
	storage := newFakeNotificationStorage()
	svc := NewService(storage, nil, newTestLogger())

	svc.Notify(5, "New Sale", "A new sale has been recorded.", "Sale", 12)

	list, err := svc.ListForUser(5)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "New Sale", list[0].Title)
	assert.Equal(t, uint(12), list[0].ReferenceID)
	assert.False(t, list[0].Read)
}

func TestNotifyNeverPanicsOnStorageFailure(t *testing.T) {
	storage := newFakeNotificationStorage()
	storage.failCreate = true
	svc := NewService(storage, nil, newTestLogger())

	assert.NotPanics(t, func() {
		svc.Notify(5, "New Sale", "msg", "Sale", 12)
		svc.RecordActivity(1, "SALE", "Sale #12 recorded")
	})
}

func TestNotifyEmailsWhenAddressKnown(t *testing.T) {
	storage := newFakeNotificationStorage()
	storage.emails[5] = "jane@example.com"
	mailer := &recordingMailer{}
	svc := NewService(storage, mailer, newTestLogger())

	svc.Notify(5, "New Sale", "msg", "Sale", 12)
	svc.Notify(6, "New Sale", "msg", "Sale", 13) // no address on file

	assert.Equal(t, []string{"jane@example.com"}, mailer.sent)
}

func TestNotifySwallowsMailerFailure(t *testing.T) {
	storage := newFakeNotificationStorage()
	storage.emails[5] = "jane@example.com"
	mailer := &recordingMailer{err: errors.New("smtp down")}
	svc := NewService(storage, mailer, newTestLogger())

	assert.NotPanics(t, func() {
		svc.Notify(5, "New Sale", "msg", "Sale", 12)
	})

	list, err := svc.ListForUser(5)
	require.NoError(t, err)
	assert.Len(t, list, 1, "the notification itself must survive a failed email")
}

func TestMarkReadChecksRecipient(t *testing.T) {
	storage := newFakeNotificationStorage()
	svc := NewService(storage, nil, newTestLogger())

	svc.Notify(5, "New Sale", "msg", "Sale", 12)

	list, err := svc.ListForUser(5)
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID

	err = svc.MarkRead(6, id)
	assert.ErrorIs(t, err, ErrNotRecipient)

	require.NoError(t, svc.MarkRead(5, id))

	list, err = svc.ListForUser(5)
	require.NoError(t, err)
	assert.True(t, list[0].Read)

	err = svc.MarkRead(5, 999)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestRecentActivitiesIsCapped(t *testing.T) {
	storage := newFakeNotificationStorage()
	svc := NewService(storage, nil, newTestLogger())

	for i := 0; i < recentActivityLimit+5; i++ {
		svc.RecordActivity(1, "SALE", "sale recorded")
	}
	svc.RecordActivity(2, "ORDER", "other shop")

	activities, err := svc.RecentActivities(1)
	require.NoError(t, err)
	assert.Len(t, activities, recentActivityLimit)
	for _, a := range activities {
		assert.Equal(t, uint(1), a.ShopID)
	}
}
