package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParseJWT(t *testing.T) {
	tok, err := SignJWT("secret", "user_2abc", "Asha", "asha@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, "user_2abc", claims.Subject)
	assert.Equal(t, "Asha", claims.Name)
	assert.Equal(t, "asha@example.com", claims.Email)
}

func TestParseJWTRejects(t *testing.T) {
	tok, err := SignJWT("secret", "user_2abc", "", "", time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT("other-secret", tok)
	assert.Error(t, err)

	expired, err := SignJWT("secret", "user_2abc", "", "", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT("secret", expired)
	assert.Error(t, err)

	anonymous, err := SignJWT("secret", " ", "", "", time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT("secret", anonymous)
	assert.Error(t, err)

	_, err = ParseJWT("secret", "not-a-token")
	assert.Error(t, err)
}
