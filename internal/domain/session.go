package domain

import "time"

// UserInfo is the member summary returned with a freshly minted session.
type UserInfo struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// AuthSession is a short-lived bearer credential representing an
// authenticated login on a relying service.
type AuthSession struct {
	Token     string    `json:"session_token"`
	User      UserInfo  `json:"user_info"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *AuthSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// LoginRecord is the audit row written for every successful QR login.
type LoginRecord struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	ServiceID        int64      `json:"service_id"`
	SessionToken     string     `json:"-"`
	LoginAt          time.Time  `json:"login_at"`
	SessionExpiresAt time.Time  `json:"session_expires_at"`
	RevokedAt        *time.Time `json:"revoked_at,omitempty"`
}
