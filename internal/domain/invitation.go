package domain

import "time"

// Invitation is a time-bounded code/pin/url-token triple granting one-time
// entry to the registration flow. Two timers apply: ExpiresAt bounds the link
// itself, SessionExpiresAt bounds the registration session started when the
// link is first opened.
type Invitation struct {
	ID int64 `json:"id"`

	Code     string `json:"code"`
	Pin      string `json:"-"`
	URLToken string `json:"url_token"`

	CreatedBy        string `json:"created_by,omitempty"`
	IntendedForEmail string `json:"intended_for_email,omitempty"`
	IntendedForName  string `json:"intended_for_name,omitempty"`

	CreatedAt        time.Time  `json:"created_at"`
	ExpiresAt        time.Time  `json:"expires_at"`
	LinkOpenedAt     *time.Time `json:"link_opened_at,omitempty"`
	SessionExpiresAt *time.Time `json:"session_expires_at,omitempty"`

	IsUsed bool       `json:"is_used"`
	UsedBy string     `json:"used_by,omitempty"`
	UsedAt *time.Time `json:"used_at,omitempty"`
}

// LinkValid reports whether the link window is still open, regardless of the
// registration session.
func (i *Invitation) LinkValid(now time.Time) bool {
	return now.Before(i.ExpiresAt)
}

// SessionActive reports whether the registration session started by opening
// the link is still running.
func (i *Invitation) SessionActive(now time.Time) bool {
	return i.SessionExpiresAt != nil && !now.After(*i.SessionExpiresAt)
}

// TimeRemaining is advisory display data; server-side checks against the
// stored deadlines are the sole authority.
type TimeRemaining struct {
	LinkRemainingSeconds    int `json:"link_remaining_seconds"`
	SessionRemainingSeconds int `json:"session_remaining_seconds"`
}

func (i *Invitation) Remaining(now time.Time, fullSession time.Duration) TimeRemaining {
	link := int(i.ExpiresAt.Sub(now).Seconds())
	if link < 0 {
		link = 0
	}
	session := int(fullSession.Seconds())
	if i.SessionExpiresAt != nil {
		session = int(i.SessionExpiresAt.Sub(now).Seconds())
	}
	if session < 0 {
		session = 0
	}
	return TimeRemaining{LinkRemainingSeconds: link, SessionRemainingSeconds: session}
}
