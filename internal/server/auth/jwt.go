// Package auth issues and verifies session tokens, hashes passwords and
// carries the verified identity through request contexts.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity embedded in every session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
}

// TokenService signs and verifies HS256 session tokens. It is safe for
// concurrent use; nothing in it changes after construction.
type TokenService struct {
	secretKey []byte
	validity  time.Duration
	now       func() time.Time
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces time.Now, used to check expiry in tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// NewTokenService returns a service signing with secretKey. Tokens stay
// valid for validity after issue.
func NewTokenService(secretKey []byte, validity time.Duration, opts ...TokenOption) *TokenService {
	s := &TokenService{secretKey: secretKey, validity: validity, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue returns a signed token for the given identity.
func (s *TokenService) Issue(userID int64, email string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
		},
		UserID: userID,
		Email:  email,
	})

	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify checks signature and expiry and returns the embedded claims.
// Any failure yields (nil, false); callers get no reason.
func (s *TokenService) Verify(tokenString string) (*Claims, bool) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func (s *TokenService) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	return claims, nil
}
