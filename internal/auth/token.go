package auth

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenKindAccess  = "access"
	tokenKindRefresh = "refresh"
)

type claims struct {
	jwtlib.RegisteredClaims
	UserID uint   `json:"uid"`
	Role   string `json:"role"`
	ShopID *uint  `json:"shop_id,omitempty"`
	Kind   string `json:"kind"`
}

type TokenPair struct {
	Access    string    `json:"access"`
	Refresh   string    `json:"refresh"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ParsedToken carries the actor plus the token metadata needed for
// refresh-token revocation bookkeeping.
type ParsedToken struct {
	Actor     Actor
	ID        string
	Kind      string
	ExpiresAt time.Time
}

type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (tm *TokenManager) IssuePair(user *User) (TokenPair, error) {
	accessExp := time.Now().UTC().Add(tm.accessTTL)
	access, err := tm.sign(user, tokenKindAccess, accessExp)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := tm.sign(user, tokenKindRefresh, time.Now().UTC().Add(tm.refreshTTL))
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{Access: access, Refresh: refresh, ExpiresAt: accessExp}, nil
}

func (tm *TokenManager) sign(user *User, kind string, expiresAt time.Time) (string, error) {
	c := claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   user.Username,
			ID:        uuid.NewString(),
			IssuedAt:  jwtlib.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    "wardrobe-shop-service",
		},
		UserID: user.ID,
		Role:   user.Role,
		ShopID: user.ShopID,
		Kind:   kind,
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c)
	return token.SignedString(tm.secret)
}

func (tm *TokenManager) Parse(tokenStr string) (ParsedToken, error) {
	c := &claims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, c, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return ParsedToken{}, ErrInvalidToken
	}

	sub, err := c.GetSubject()
	if err != nil || sub == "" {
		return ParsedToken{}, ErrInvalidToken
	}

	return ParsedToken{
		Actor: Actor{
			ID:       c.UserID,
			Username: sub,
			Role:     c.Role,
			ShopID:   c.ShopID,
		},
		ID:        c.RegisteredClaims.ID,
		Kind:      c.Kind,
		ExpiresAt: c.RegisteredClaims.ExpiresAt.Time,
	}, nil
}
