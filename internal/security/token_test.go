package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret-with-enough-length!"

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	token, err := tm.Generate(7, "admin", "admin@duedesk.local", "DueDesk Administrator", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.AdminID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin@duedesk.local", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "duedesk", claims.Issuer)
	assert.Equal(t, "7", claims.Subject)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager(testSecret, time.Hour).Generate(1, "admin", "", "", "")
	require.NoError(t, err)

	_, err = NewTokenManager("a-completely-different-signing-secret!!", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	tm := NewTokenManager(testSecret, -time.Minute)
	// Negative expiry falls back to the default, so build a short-lived
	// manager explicitly.
	short := &tokenManager{secret: []byte(testSecret), expiry: -time.Minute}

	token, err := short.Generate(1, "admin", "", "", "")
	require.NoError(t, err)

	_, err = tm.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	_, err := tm.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tm.Validate("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
