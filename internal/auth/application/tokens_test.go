package application

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestAccessTokenRoundTrip(t *testing.T) {
	token, expiresAt, err := signAccessToken(testSecret, "user-123", time.Now(), 15*time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Second)

	userID, err := parseAccessToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, _, err := signAccessToken(testSecret, "user-123", time.Now(), 15*time.Minute)
	require.NoError(t, err)

	_, err = parseAccessToken("another-secret-that-is-32-chars!", token)
	assert.Error(t, err)
}

func TestAccessTokenExpired(t *testing.T) {
	issuedAt := time.Now().Add(-time.Hour)
	token, _, err := signAccessToken(testSecret, "user-123", issuedAt, 15*time.Minute)
	require.NoError(t, err)

	_, err = parseAccessToken(testSecret, token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAccessTokenGarbage(t *testing.T) {
	_, err := parseAccessToken(testSecret, "not-a-jwt")
	assert.Error(t, err)
}

func TestNewRefreshToken(t *testing.T) {
	first, err := newRefreshToken()
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := newRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestNewVerificationCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := newVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}

func TestNewUsername(t *testing.T) {
	name, err := newUsername()
	require.NoError(t, err)
	assert.Regexp(t, `^user_[0-9a-f]{8}$`, name)
}
