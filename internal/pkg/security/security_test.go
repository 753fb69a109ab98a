package security

import (
	"Ringside/internal/api/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_RoundTrip(t *testing.T) {
	Init(config.JWTConfig{Secret: "test-secret", Issuer: "Ringside", ExpireHours: 1})

	token, err := GenerateToken("athlete-1", []string{"USER"})
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "athlete-1", claims.UserID)
	assert.Equal(t, []string{"USER"}, claims.Roles)

	sig, err := ExtractSignature(token)
	require.NoError(t, err)
	assert.NotEmpty(t, sig)
}

func TestToken_RejectsTampered(t *testing.T) {
	Init(config.JWTConfig{Secret: "test-secret"})
	token, err := GenerateToken("athlete-1", nil)
	require.NoError(t, err)

	_, err = ValidateToken(token + "x")
	assert.Error(t, err)

	_, err = ExtractSignature("not-a-token")
	assert.Error(t, err)
}

func TestPassword_Hash(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)

	assert.NoError(t, CheckPasswordHash("s3cret!", hash))
	assert.ErrorIs(t, CheckPasswordHash("wrong", hash), ErrInvalidCredentials)

	_, err = HashPassword("")
	assert.Error(t, err)
}
