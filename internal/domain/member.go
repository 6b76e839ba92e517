package domain

import "time"

// Member is an activated account holding a long-lived membership credential.
// The credential's auth key is stored only as a bcrypt hash plus a SHA-256
// fingerprint; the fingerprint column carries the uniqueness constraint and
// lets lookups avoid a full-table bcrypt scan.
type Member struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`

	AuthKeyHash        string `json:"-"`
	AuthKeyFingerprint string `json:"-"`

	IsActive  bool       `json:"is_active"`
	IssuedAt  time.Time  `json:"issued_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// MembershipCredential is the one-time view of a freshly minted auth key.
// The plaintext key exists only in this value; it is never persisted.
type MembershipCredential struct {
	AuthKey  string    `json:"auth_key"`
	IssuedAt time.Time `json:"issued_at"`
}
