package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestInspect_AccessToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: jwt.NewNumericDate(exp)}})

	info := Inspect(tok)

	assert.True(t, info.Parsed)
	assert.False(t, info.IsProvisional())
	assert.True(t, info.ExpiresAt.Equal(exp))
	assert.False(t, info.Expired(time.Now()))
	assert.True(t, info.Expired(exp))
}

func TestInspect_ProvisionalToken(t *testing.T) {
	tok := sign(t, Claims{Step: RegistrationStep})

	info := Inspect(tok)

	assert.True(t, info.Parsed)
	assert.True(t, info.IsProvisional())
	assert.False(t, info.Expired(time.Now()), "no exp claim never expires client-side")
}

func TestInspect_OpaqueToken(t *testing.T) {
	info := Inspect("opaque-token-123")

	assert.False(t, info.Parsed)
	assert.False(t, info.IsProvisional())
	assert.False(t, info.Expired(time.Now()))
}
