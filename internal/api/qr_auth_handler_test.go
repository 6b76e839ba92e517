package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whytehoux-projecty/MIS/internal/api"
	"github.com/whytehoux-projecty/MIS/internal/domain"
	"github.com/whytehoux-projecty/MIS/internal/service"
)

type stubQRLogin struct {
	challenge *service.QRChallenge
	session   *domain.AuthSession
	err       error

	gotServiceKey string
}

func (s *stubQRLogin) GenerateQR(ctx context.Context, serviceID int64, serviceKey string) (*service.QRChallenge, error) {
	s.gotServiceKey = serviceKey
	return s.challenge, s.err
}

func (s *stubQRLogin) ScanQR(ctx context.Context, token, scannedPattern, authKey string) (*service.PinGrant, error) {
	return nil, s.err
}

func (s *stubQRLogin) VerifyPin(ctx context.Context, token, pin string) (*domain.AuthSession, error) {
	return s.session, s.err
}

type stubSessions struct {
	user      *domain.UserInfo
	revokeErr error
}

func (s *stubSessions) Mint(ctx context.Context, member *domain.Member, serviceID int64) (*domain.AuthSession, error) {
	return nil, nil
}

func (s *stubSessions) Validate(ctx context.Context, token string) (*domain.UserInfo, error) {
	if s.user == nil {
		return nil, domain.ErrInvalidCredential
	}
	return s.user, nil
}

func (s *stubSessions) Revoke(ctx context.Context, token string) error {
	return s.revokeErr
}

func TestQRAuthHandlerGenerate(t *testing.T) {
	t.Run("Reads Service API Key And Returns Challenge", func(t *testing.T) {
		stub := &stubQRLogin{challenge: &service.QRChallenge{
			Token:            "qr-token",
			QRImagePNG:       "aGk=",
			ExpiresAt:        time.Now().Add(5 * time.Minute),
			ExpiresInSeconds: 300,
		}}
		h := api.NewQRAuthHandler(stub, &stubSessions{})

		rec := postJSON(t, h.Generate, map[string]any{"service_id": 7, "service_api_key": "secret-key"})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "secret-key", stub.gotServiceKey)
		var got map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "qr-token", got["qr_token"])
		assert.Equal(t, float64(300), got["expires_in_seconds"])
	})
}

func TestQRAuthHandlerVerifyPin(t *testing.T) {
	t.Run("Success Wraps Session", func(t *testing.T) {
		stub := &stubQRLogin{session: &domain.AuthSession{
			Token:     "session-token",
			User:      domain.UserInfo{UserID: 21, Username: "ada"},
			ExpiresAt: time.Now().Add(30 * time.Minute),
		}}
		h := api.NewQRAuthHandler(stub, &stubSessions{})

		rec := postJSON(t, h.VerifyPin, map[string]string{"qr_token": "qr-token", "pin": "135790"})

		assert.Equal(t, http.StatusOK, rec.Code)
		var got map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, true, got["success"])
		assert.Equal(t, "session-token", got["session_token"])
		assert.InDelta(t, 30*60, got["expires_in_seconds"], 5)
		user := got["user_info"].(map[string]any)
		assert.Equal(t, "ada", user["username"])
	})

	// A caller must not learn whether a token is unknown, lapsed or consumed.
	t.Run("Failures Collapse To One Answer", func(t *testing.T) {
		failures := []error{
			domain.ErrNotFound,
			domain.ErrExpired,
			domain.ErrAlreadyUsed,
		}
		var bodies []string
		for _, failure := range failures {
			h := api.NewQRAuthHandler(&stubQRLogin{err: failure}, &stubSessions{})

			rec := postJSON(t, h.VerifyPin, map[string]string{"qr_token": "qr-token", "pin": "000000"})

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			bodies = append(bodies, rec.Body.String())
		}
		for _, body := range bodies[1:] {
			assert.Equal(t, bodies[0], body)
		}
	})

	t.Run("Wrong Pin Stays Retryable", func(t *testing.T) {
		h := api.NewQRAuthHandler(&stubQRLogin{err: domain.ErrInvalidCredential}, &stubSessions{})
		rec := postJSON(t, h.VerifyPin, map[string]string{"qr_token": "qr-token", "pin": "000000"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Lockout Surfaces Too Many Requests", func(t *testing.T) {
		h := api.NewQRAuthHandler(&stubQRLogin{err: domain.ErrLockedOut}, &stubSessions{})
		rec := postJSON(t, h.VerifyPin, map[string]string{"qr_token": "qr-token", "pin": "000000"})
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}

func TestQRAuthHandlerLogout(t *testing.T) {
	logout := func(t *testing.T, h *api.QRAuthHandler, bearer string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/auth/logout", bytes.NewReader(nil))
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		rec := httptest.NewRecorder()
		h.Logout(rec, req)
		return rec
	}

	t.Run("Missing Bearer Rejected", func(t *testing.T) {
		h := api.NewQRAuthHandler(&stubQRLogin{}, &stubSessions{})
		rec := logout(t, h, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Revoke Failure Still Succeeds", func(t *testing.T) {
		h := api.NewQRAuthHandler(&stubQRLogin{}, &stubSessions{revokeErr: domain.ErrNotFound})

		rec := logout(t, h, "stale-token")

		assert.Equal(t, http.StatusOK, rec.Code)
		var got map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, true, got["success"])
	})
}

var _ service.QRLoginService = (*stubQRLogin)(nil)
var _ service.SessionService = (*stubSessions)(nil)
