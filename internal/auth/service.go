package auth

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Email     string `json:"email"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Role      string `json:"role"`
	ShopID    *uint  `json:"shop"`
	Contact   string `json:"contact"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	ID         uint      `json:"id"`
	Tokens     TokenPair `json:"tokens"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Role       string    `json:"role"`
	ShopID     *uint     `json:"shop,omitempty"`
	FirstLogin bool      `json:"first_login,omitempty"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type AuthService interface {
	Register(req RegisterRequest) (*User, TokenPair, error)
	Login(req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	ChangePassword(actor Actor, req ChangePasswordRequest) error
	Authenticate(ctx context.Context, accessToken string) (Actor, error)
	GetUser(id uint) (*User, error)
	ListUsers() ([]User, error)
}

type authService struct {
	storage  Storage
	tokens   *TokenManager
	sessions SessionStore
	logger   *logrus.Entry
}

func NewService(storage Storage, tokens *TokenManager, sessions SessionStore, log *logrus.Entry) AuthService {
	return &authService{
		storage:  storage,
		tokens:   tokens,
		sessions: sessions,
		logger:   log,
	}
}

func (s *authService) Register(req RegisterRequest) (*User, TokenPair, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if len(req.Password) < 6 {
		return nil, TokenPair{}, ErrWeakPassword
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = RoleCustomer
	}
	if !ValidRole(role) {
		return nil, TokenPair{}, ErrInvalidRole
	}
	if role == RoleAttendant && req.ShopID == nil {
		return nil, TokenPair{}, ErrAttendantNeedsShop
	}

	if _, err := s.storage.GetUserByUsername(username); err == nil {
		return nil, TokenPair{}, ErrUsernameTaken
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, TokenPair{}, err
	}

	user := &User{
		Username:     username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		ShopID:       req.ShopID,
		Contact:      req.Contact,
		FirstLogin:   role == RoleAttendant,
	}
	if err := s.storage.CreateUser(user); err != nil {
		return nil, TokenPair{}, err
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, TokenPair{}, err
	}

	s.logger.Infof("registered user %s with role %s", username, role)
	return user, pair, nil
}

func (s *authService) Login(req LoginRequest) (*LoginResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))

	user, err := s.storage.GetUserByUsername(username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !verifyPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, err
	}

	resp := &LoginResponse{
		ID:         user.ID,
		Tokens:     pair,
		Username:   user.Username,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Role:       user.Role,
		FirstLogin: user.FirstLogin,
	}
	if user.Role == RoleAdmin || user.Role == RoleAttendant {
		resp.ShopID = user.ShopID
	}
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	parsed, err := s.tokens.Parse(refreshToken)
	if err != nil {
		return err
	}
	if parsed.Kind != tokenKindRefresh {
		return ErrInvalidToken
	}
	return s.sessions.Revoke(ctx, parsed.ID, parsed.ExpiresAt)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	parsed, err := s.tokens.Parse(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	if parsed.Kind != tokenKindRefresh {
		return TokenPair{}, ErrInvalidToken
	}

	revoked, err := s.sessions.IsRevoked(ctx, parsed.ID)
	if err != nil {
		return TokenPair{}, err
	}
	if revoked {
		return TokenPair{}, ErrTokenRevoked
	}

	user, err := s.storage.GetUserByID(parsed.Actor.ID)
	if err != nil {
		return TokenPair{}, ErrInvalidToken
	}

	// The old refresh token is retired once exchanged.
	if err := s.sessions.Revoke(ctx, parsed.ID, parsed.ExpiresAt); err != nil {
		return TokenPair{}, err
	}

	return s.tokens.IssuePair(user)
}

func (s *authService) ChangePassword(actor Actor, req ChangePasswordRequest) error {
	user, err := s.storage.GetUserByID(actor.ID)
	if err != nil {
		return err
	}
	if !verifyPassword(user.PasswordHash, req.OldPassword) {
		return ErrInvalidCredentials
	}
	if len(req.NewPassword) < 6 {
		return ErrWeakPassword
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.storage.UpdatePassword(user.ID, hash, false)
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (Actor, error) {
	parsed, err := s.tokens.Parse(accessToken)
	if err != nil {
		return Actor{}, err
	}
	if parsed.Kind != tokenKindAccess {
		return Actor{}, ErrInvalidToken
	}
	return parsed.Actor, nil
}

func (s *authService) GetUser(id uint) (*User, error) {
	return s.storage.GetUserByID(id)
}

func (s *authService) ListUsers() ([]User, error) {
	return s.storage.ListUsers()
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func verifyPassword(stored, input string) bool {
	if stored == "" || strings.TrimSpace(input) == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
}
