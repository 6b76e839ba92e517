package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testSecret = "unit-test-secret-at-least-32-chars!!"

func TestTokenManager_SessionRoundtrip(t *testing.T) {
	tm := NewTokenManager(testSecret)

	token, err := tm.GenerateSessionToken(21, "ada_l", "ada@example.org", 2, 30*time.Minute)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := tm.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, int64(21), claims.UserID)
	assert.Equal(t, "ada_l", claims.Username)
	assert.Equal(t, int64(2), claims.ServiceID)
	assert.Equal(t, TokenTypeSession, claims.Type)
}

func TestTokenManager_AdminToken(t *testing.T) {
	tm := NewTokenManager(testSecret)

	token, err := tm.GenerateAdminToken(1, "root-admin", time.Hour)
	assert.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, TokenTypeAdmin, claims.Type)
	assert.Contains(t, claims.Roles, "admin")
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager(testSecret)

	token, err := tm.GenerateSessionToken(21, "ada_l", "", 2, -time.Minute)
	assert.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	tm := NewTokenManager(testSecret)
	other := NewTokenManager("a-completely-different-32-char-secret")

	token, err := tm.GenerateSessionToken(21, "ada_l", "", 2, time.Minute)
	assert.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Garbage(t *testing.T) {
	tm := NewTokenManager(testSecret)
	_, err := tm.ValidateToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
