package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whytehoux-projecty/MIS/internal/api"
	"github.com/whytehoux-projecty/MIS/internal/security"
)

func TestAdminAuth(t *testing.T) {
	tokens := security.NewTokenManager("test-secret-test-secret-test-secret!")
	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	guard := api.AdminAuth(tokens)(next)

	t.Run("Missing Token", func(t *testing.T) {
		reached = false
		req := httptest.NewRequest(http.MethodGet, "/admin/interest", nil)
		rec := httptest.NewRecorder()
		guard.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, reached)
	})

	t.Run("Garbage Token", func(t *testing.T) {
		reached = false
		req := httptest.NewRequest(http.MethodGet, "/admin/interest", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		rec := httptest.NewRecorder()
		guard.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, reached)
	})

	t.Run("Session Token Is Not Admin", func(t *testing.T) {
		reached = false
		token, err := tokens.GenerateSessionToken(1, "ada", "ada@example.org", 2, time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/admin/interest", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		guard.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.False(t, reached)
	})

	t.Run("Admin Token Passes", func(t *testing.T) {
		reached = false
		token, err := tokens.GenerateAdminToken(1, "root", time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/admin/interest", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		guard.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, reached)
	})
}
