package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	tok, err := SignJWT("s3cret", "d5a4c0a2-6a52-4a57-9a55-6f0f3e1b2c3d", "client", 5)
	require.NoError(t, err)

	claims, err := ParseJWT("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, "d5a4c0a2-6a52-4a57-9a55-6f0f3e1b2c3d", claims.UserID)
	assert.Equal(t, "client", claims.Role)

	_, err = ParseJWT("other", tok)
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	tok, err := SignJWT("s3cret", "u", "client", -1)
	require.NoError(t, err)

	_, err = ParseJWT("s3cret", tok)
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
}
