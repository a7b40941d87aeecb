package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserStorage struct {
	nextID uint
	users  map[uint]*User
}

func newFakeUserStorage() *fakeUserStorage {
	return &fakeUserStorage{nextID: 1, users: make(map[uint]*User)}
}

func (f *fakeUserStorage) CreateUser(user *User) error {
	user.ID = f.nextID
	f.nextID++
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStorage) GetUserByUsername(username string) (*User, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeUserStorage) GetUserByID(id uint) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStorage) ListUsers() ([]User, error) {
	users := make([]User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, *u)
	}
	return users, nil
}

func (f *fakeUserStorage) UpdatePassword(userID uint, passwordHash string, firstLogin bool) error {
	u, ok := f.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.FirstLogin = firstLogin
	return nil
}

func (f *fakeUserStorage) UpdateUser(user *User) error {
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func newTestLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func newTestAuthService() (AuthService, *fakeUserStorage) {
	storage := newFakeUserStorage()
	tokens := NewTokenManager("test-secret", time.Minute, time.Hour)
	return NewService(storage, tokens, NewMemorySessionStore(), newTestLogger()), storage
}

func TestRegisterDefaultsToCustomer(t *testing.T) {
	svc, _ := newTestAuthService()

	user, pair, err := svc.Register(RegisterRequest{
		Username:  "Jane",
		Password:  "secret1",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, user.Role)
	assert.Equal(t, "jane", user.Username)
	assert.False(t, user.FirstLogin)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
}

func TestRegisterAttendantRequiresShop(t *testing.T) {
	svc, _ := newTestAuthService()

	_, _, err := svc.Register(RegisterRequest{
		Username:  "worker",
		Password:  "secret1",
		FirstName: "W",
		LastName:  "W",
		Role:      RoleAttendant,
	})
	assert.ErrorIs(t, err, ErrAttendantNeedsShop)

	shopID := uint(3)
	user, _, err := svc.Register(RegisterRequest{
		Username:  "worker",
		Password:  "secret1",
		FirstName: "W",
		LastName:  "W",
		Role:      RoleAttendant,
		ShopID:    &shopID,
	})
	require.NoError(t, err)
	assert.True(t, user.FirstLogin, "attendants must change their password on first login")
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestAuthService()

	_, _, err := svc.Register(RegisterRequest{Username: "a", Password: "short", FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, _, err = svc.Register(RegisterRequest{Username: "a", Password: "secret1", FirstName: "A", LastName: "B", Role: "Owner"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, _, err = svc.Register(RegisterRequest{Username: "dupe", Password: "secret1", FirstName: "A", LastName: "B"})
	require.NoError(t, err)
	_, _, err = svc.Register(RegisterRequest{Username: "DUPE", Password: "secret1", FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newTestAuthService()

	_, _, err := svc.Register(RegisterRequest{Username: "jane", Password: "secret1", FirstName: "J", LastName: "D"})
	require.NoError(t, err)

	_, err = svc.Login(LoginRequest{Username: "jane", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(LoginRequest{Username: "nobody", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginSignalsFirstLogin(t *testing.T) {
	svc, _ := newTestAuthService()

	shopID := uint(1)
	_, _, err := svc.Register(RegisterRequest{
		Username: "worker", Password: "secret1", FirstName: "W", LastName: "W",
		Role: RoleAttendant, ShopID: &shopID,
	})
	require.NoError(t, err)

	resp, err := svc.Login(LoginRequest{Username: "worker", Password: "secret1"})
	require.NoError(t, err)
	assert.True(t, resp.FirstLogin)
	require.NotNil(t, resp.ShopID)
	assert.Equal(t, shopID, *resp.ShopID)
}

func TestAuthenticateAcceptsOnlyAccessTokens(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, pair, err := svc.Register(RegisterRequest{Username: "jane", Password: "secret1", FirstName: "J", LastName: "D", Role: RoleAdmin})
	require.NoError(t, err)

	actor, err := svc.Authenticate(ctx, pair.Access)
	require.NoError(t, err)
	assert.Equal(t, "jane", actor.Username)
	assert.Equal(t, RoleAdmin, actor.Role)

	_, err = svc.Authenticate(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, pair, err := svc.Register(RegisterRequest{Username: "jane", Password: "secret1", FirstName: "J", LastName: "D"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.Refresh))

	_, err = svc.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRefreshRetiresExchangedToken(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, pair, err := svc.Register(RegisterRequest{Username: "jane", Password: "secret1", FirstName: "J", LastName: "D"})
	require.NoError(t, err)

	fresh, err := svc.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.Access)

	_, err = svc.Refresh(ctx, pair.Refresh)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = svc.Refresh(ctx, fresh.Refresh)
	assert.NoError(t, err)
}

func TestChangePasswordVerifiesOldPassword(t *testing.T) {
	svc, storage := newTestAuthService()

	user, _, err := svc.Register(RegisterRequest{Username: "jane", Password: "secret1", FirstName: "J", LastName: "D"})
	require.NoError(t, err)

	actor := Actor{ID: user.ID, Username: user.Username, Role: user.Role}

	err = svc.ChangePassword(actor, ChangePasswordRequest{OldPassword: "wrong", NewPassword: "secret2"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(actor, ChangePasswordRequest{OldPassword: "secret1", NewPassword: "abc"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	require.NoError(t, svc.ChangePassword(actor, ChangePasswordRequest{OldPassword: "secret1", NewPassword: "secret2"}))

	stored, err := storage.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.False(t, stored.FirstLogin, "a successful password change clears the first-login flag")

	_, err = svc.Login(LoginRequest{Username: "jane", Password: "secret2"})
	assert.NoError(t, err)
}

func TestTokenManagerRejectsForeignSecret(t *testing.T) {
	user := &User{Username: "jane", Role: RoleAdmin}
	user.ID = 7

	issued, err := NewTokenManager("secret-a", time.Minute, time.Hour).IssuePair(user)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", time.Minute, time.Hour).Parse(issued.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
