package auth

import (
	"testing"
	"time"

	"github.com/mpetrovs/spendvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateSessionToken("session-123", secret, time.Hour)
	require.NoError(t, err)

	got, err := SessionIDFromToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "session-123", got)
}

func TestSessionToken_WrongSecret(t *testing.T) {
	token, err := GenerateSessionToken("session-123", []byte("secret-a"), time.Hour)
	require.NoError(t, err)

	_, err = SessionIDFromToken(token, []byte("secret-b"))
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestSessionToken_Expired(t *testing.T) {
	token, err := GenerateSessionToken("session-123", []byte("secret"), -time.Minute)
	require.NoError(t, err)

	_, err = SessionIDFromToken(token, []byte("secret"))
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestSessionToken_Garbage(t *testing.T) {
	_, err := SessionIDFromToken("not-a-token", []byte("secret"))
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}
