package domain

import "time"

type QRSessionStatus string

const (
	QRStatusIssued       QRSessionStatus = "issued"
	QRStatusPinGenerated QRSessionStatus = "pin_generated"
	QRStatusConsumed     QRSessionStatus = "consumed"
	QRStatusExpired      QRSessionStatus = "expired"
)

// QRSession is an ephemeral cross-device login handshake. The requesting
// service displays the QR; the member's authenticated device scans it and
// receives a short-lived PIN; the service submits the PIN to finish login.
type QRSession struct {
	ID        int64  `json:"id"`
	Token     string `json:"token"`
	ServiceID int64  `json:"service_id"`

	// Obfuscated pattern actually encoded in the QR image. Half of the
	// session code positions are masked with 'X'; the scanner must echo the
	// pattern back exactly.
	SessionCode   string `json:"-"`
	QRCodePattern string `json:"-"`
	HiddenIndices []int  `json:"-"`

	Status QRSessionStatus `json:"status"`

	// Filled on scan by the member's primary device.
	MemberAuthFingerprint string     `json:"-"`
	Pin                   string     `json:"-"`
	PinExpiresAt          *time.Time `json:"-"`
	ScannedAt             *time.Time `json:"scanned_at,omitempty"`

	IsUsed     bool       `json:"is_used"`
	IsVerified bool       `json:"is_verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`

	FailedAttempts int        `json:"-"`
	LockoutUntil   *time.Time `json:"-"`

	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session has lapsed. The boundary instant
// itself counts as expired.
func (q *QRSession) Expired(now time.Time) bool {
	return !now.Before(q.ExpiresAt)
}

func (q *QRSession) PinExpired(now time.Time) bool {
	return q.PinExpiresAt != nil && !now.Before(*q.PinExpiresAt)
}

func (q *QRSession) LockedOut(now time.Time) bool {
	return q.LockoutUntil != nil && now.Before(*q.LockoutUntil)
}

// RegisteredService is a relying service allowed to request QR logins.
type RegisteredService struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	APIKey   string `json:"-"`
	IsActive bool   `json:"is_active"`
}
