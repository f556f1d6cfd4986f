package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminSessionToken_RoundTrip(t *testing.T) {
	m := NewManager("test-secret")

	token, issued, err := m.GenerateAdminSessionToken(time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, issued.SessionID())

	claims, err := m.ValidateAdminSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, issued.SessionID(), claims.SessionID())
	assert.Equal(t, "admin", claims.Role)
}

func TestAdminSessionToken_Expired(t *testing.T) {
	m := NewManager("test-secret")
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := m.GenerateAdminSessionToken(time.Hour)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateAdminSessionToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAdminSessionToken_WrongSecret(t *testing.T) {
	token, _, err := NewManager("one").GenerateAdminSessionToken(time.Hour)
	require.NoError(t, err)

	_, err = NewManager("two").ValidateAdminSessionToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestAdminSessionToken_WrongType(t *testing.T) {
	m := NewManager("test-secret")
	claims := &Claims{
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "abc",
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	require.NoError(t, err)

	_, err = m.ValidateAdminSessionToken(token)
	assert.Error(t, err)
}
