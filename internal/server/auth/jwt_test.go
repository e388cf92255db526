package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	svc := NewTokenService([]byte("super-secret"), time.Hour)

	for _, tc := range []struct {
		id    int64
		email string
	}{
		{1, "anna@example.com"},
		{42, "bob+tag@example.org"},
		{0, ""},
	} {
		tok, err := svc.Issue(tc.id, tc.email)
		require.NoError(t, err)

		claims, ok := svc.Verify(tok)
		require.True(t, ok, "token for %d/%q must verify", tc.id, tc.email)
		assert.Equal(t, tc.id, claims.UserID)
		assert.Equal(t, tc.email, claims.Email)
	}
}

func TestVerify_ExpiresAfterValidity(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewTokenService([]byte("secret"), 7*24*time.Hour, WithClock(clock.Now))

	tok, err := svc.Issue(7, "u@example.com")
	require.NoError(t, err)

	clock.t = clock.t.Add(7*24*time.Hour - time.Minute)
	_, ok := svc.Verify(tok)
	assert.True(t, ok, "token must still verify just before expiry")

	clock.t = clock.t.Add(2 * time.Minute)
	claims, ok := svc.Verify(tok)
	assert.False(t, ok)
	assert.Nil(t, claims)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenService([]byte("right-secret"), time.Hour).Issue(2, "a@b.c")
	require.NoError(t, err)

	_, ok := NewTokenService([]byte("wrong-secret"), time.Hour).Verify(tok)
	assert.False(t, ok)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	svc := NewTokenService([]byte("k"), time.Hour)
	for _, tok := range []string{"", "garbage", "not.a.jwt", "a.b"} {
		claims, ok := svc.Verify(tok)
		assert.False(t, ok, "token %q", tok)
		assert.Nil(t, claims)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           1,
	})
	signed, err := tok.SignedString(secret)
	require.NoError(t, err)

	_, ok := NewTokenService(secret, time.Hour).Verify(signed)
	assert.False(t, ok)
}

func TestVerify_RequiresExpiration(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1}).SignedString(secret)
	require.NoError(t, err)

	_, ok := NewTokenService(secret, time.Hour).Verify(signed)
	assert.False(t, ok)
}
