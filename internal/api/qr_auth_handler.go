package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/whytehoux-projecty/MIS/internal/logger"
	"github.com/whytehoux-projecty/MIS/internal/service"
)

type QRAuthHandler struct {
	qrLogin  service.QRLoginService
	sessions service.SessionService
}

func NewQRAuthHandler(qrLogin service.QRLoginService, sessions service.SessionService) *QRAuthHandler {
	return &QRAuthHandler{qrLogin: qrLogin, sessions: sessions}
}

type generateQRRequest struct {
	ServiceID  int64  `json:"service_id"`
	ServiceKey string `json:"service_api_key"`
}

func (h *QRAuthHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var body generateQRRequest
	if !decodeBody(w, r, &body) {
		return
	}

	challenge, err := h.qrLogin.GenerateQR(r.Context(), body.ServiceID, body.ServiceKey)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, challenge)
}

type scanQRRequest struct {
	QRToken        string `json:"qr_token"`
	ScannedPattern string `json:"scanned_pattern"`
	AuthKey        string `json:"auth_key"`
}

func (h *QRAuthHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var body scanQRRequest
	if !decodeBody(w, r, &body) {
		return
	}

	grant, err := h.qrLogin.ScanQR(r.Context(), body.QRToken, body.ScannedPattern, body.AuthKey)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, grant)
}

type verifyPinRequest struct {
	QRToken string `json:"qr_token"`
	Pin     string `json:"pin"`
}

func (h *QRAuthHandler) VerifyPin(w http.ResponseWriter, r *http.Request) {
	var body verifyPinRequest
	if !decodeBody(w, r, &body) {
		return
	}

	session, err := h.qrLogin.VerifyPin(r.Context(), body.QRToken, body.Pin)
	if err != nil {
		writeQRVerifyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"session_token":      session.Token,
		"user_info":          session.User,
		"expires_at":         session.ExpiresAt,
		"expires_in_seconds": int64(time.Until(session.ExpiresAt).Seconds()),
	})
}

// Session reports who the bearer token belongs to, or 401 if it is no longer
// valid.
func (h *QRAuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	user, err := h.sessions.Validate(r.Context(), token)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *QRAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	// Logout is best effort: an already-revoked or unknown token still logs
	// the caller out, so never surface the revoke failure.
	if err := h.sessions.Revoke(r.Context(), token); err != nil {
		logger.Warn("session revoke failed during logout", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
