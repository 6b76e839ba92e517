package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/whytehoux-projecty/MIS/internal/domain"
	"github.com/whytehoux-projecty/MIS/internal/logger"
	"github.com/whytehoux-projecty/MIS/internal/securestore"
)

// KV keys under which the guard persists session material.
const (
	keySessionToken     = "mis_session_token"
	keyUserInfo         = "mis_user_info"
	keySessionExpires   = "mis_session_expires"
	keyBiometricEnabled = "mis_biometric_enabled"
)

// RemoteInvalidator revokes a session on the server. Logout calls it
// best-effort; local state is cleared either way.
type RemoteInvalidator interface {
	Revoke(ctx context.Context, token string) error
}

// Guard is the device-side session keeper. It persists the minted session in
// the secure store and enforces expiry lazily on read, so a stale session is
// never handed to a caller.
type Guard struct {
	store securestore.Store
	now   func() time.Time
}

func NewGuard(store securestore.Store) *Guard {
	return &Guard{store: store, now: time.Now}
}

func (g *Guard) SetSession(token string, user domain.UserInfo, expiresInSeconds int) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return err
	}
	expiresAt := g.now().Add(time.Duration(expiresInSeconds) * time.Second)

	if err := g.store.Set(keySessionToken, token); err != nil {
		return err
	}
	if err := g.store.Set(keyUserInfo, string(userJSON)); err != nil {
		return err
	}
	return g.store.Set(keySessionExpires, strconv.FormatInt(expiresAt.Unix(), 10))
}

// GetSession returns the stored session, or nil if none is stored or it has
// lapsed. A lapsed session is cleared before returning.
func (g *Guard) GetSession() (*domain.AuthSession, error) {
	token, err := g.store.Get(keySessionToken)
	if err != nil {
		return nil, nil
	}
	expiresRaw, err := g.store.Get(keySessionExpires)
	if err != nil {
		return nil, nil
	}
	expiresUnix, err := strconv.ParseInt(expiresRaw, 10, 64)
	if err != nil {
		g.ClearSession()
		return nil, nil
	}
	expiresAt := time.Unix(expiresUnix, 0)
	if !g.now().Before(expiresAt) {
		g.ClearSession()
		return nil, nil
	}

	var user domain.UserInfo
	if raw, err := g.store.Get(keyUserInfo); err == nil {
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			g.ClearSession()
			return nil, nil
		}
	}

	return &domain.AuthSession{Token: token, User: user, ExpiresAt: expiresAt}, nil
}

// ClearSession removes session material. The biometric preference survives;
// it belongs to the device, not the session.
func (g *Guard) ClearSession() {
	g.store.Delete(keySessionToken)
	g.store.Delete(keyUserInfo)
	g.store.Delete(keySessionExpires)
}

// Logout revokes the session remotely best-effort and always clears local
// state.
func (g *Guard) Logout(ctx context.Context, remote RemoteInvalidator) {
	token, err := g.store.Get(keySessionToken)
	if err == nil && token != "" && remote != nil {
		if err := remote.Revoke(ctx, token); err != nil {
			logger.Warn("remote logout failed, clearing local session anyway", "error", err)
		}
	}
	g.ClearSession()
}

func (g *Guard) SetBiometricEnabled(enabled bool) error {
	return g.store.Set(keyBiometricEnabled, strconv.FormatBool(enabled))
}

func (g *Guard) BiometricEnabled() bool {
	raw, err := g.store.Get(keyBiometricEnabled)
	if err != nil {
		return false
	}
	enabled, _ := strconv.ParseBool(raw)
	return enabled
}
