// internal/utils/jwt_test.go
package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateJWT("0x00000000000000000000000000000000000000a1", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "0x00000000000000000000000000000000000000a1", claims.Address)
	assert.Equal(t, claims.Address, claims.Subject)
}

func TestJWTExpired(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateJWT("0xabc", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestJWTWrongSecret(t *testing.T) {
	SetJWTSecret("test-secret")
	token, err := GenerateJWT("0xabc", time.Hour)
	require.NoError(t, err)

	SetJWTSecret("other-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestJWTGarbage(t *testing.T) {
	SetJWTSecret("test-secret")
	_, err := ValidateJWT("not-a-token")
	assert.Error(t, err)
}
