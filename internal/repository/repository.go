package repository

import (
	"context"
	"time"

	"github.com/whytehoux-projecty/MIS/internal/domain"
)

// All mutating operations that race with other actors take the expected prior
// state and compare-and-swap it in a single statement. Losing the race yields
// domain.ErrConflict (or the more specific ErrAlreadyUsed); no lost updates.

type InterestRequestRepository interface {
	Create(ctx context.Context, req *domain.InterestRequest) error
	GetByID(ctx context.Context, id int64) (*domain.InterestRequest, error)
	GetByEmail(ctx context.Context, email string) (*domain.InterestRequest, error)

	// TransitionStatus persists from→to keyed on the expected prior status,
	// stamping the review annotations in the same statement. Returns
	// domain.ErrConflict when the row is no longer in the expected status.
	TransitionStatus(ctx context.Context, id int64, from, to domain.InterestStatus, stamp *domain.ReviewStamp) error

	List(ctx context.Context, status domain.InterestStatus, limit, offset int32) ([]domain.InterestRequest, error)
	CountByStatus(ctx context.Context) (map[domain.InterestStatus]int, error)

	// Expiry sweep helpers; reporting only, lazy checks stay authoritative.
	ExpireWithLapsedInvitations(ctx context.Context, now time.Time) (int64, error)
	ExpireInfoRequestedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type InvitationRepository interface {
	Create(ctx context.Context, inv *domain.Invitation) error
	GetByCode(ctx context.Context, code string) (*domain.Invitation, error)
	GetByURLToken(ctx context.Context, urlToken string) (*domain.Invitation, error)
	GetActiveByEmail(ctx context.Context, email string, now time.Time) (*domain.Invitation, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	URLTokenExists(ctx context.Context, urlToken string) (bool, error)

	// StartSession stamps the first link open; idempotent (a second open of a
	// live session is not an error, the stored deadline never moves).
	StartSession(ctx context.Context, id int64, openedAt, sessionExpiresAt time.Time) error

	// MarkUsed consumes the invitation keyed on is_used=false, recording the
	// registration window in the same statement. Returns domain.ErrAlreadyUsed
	// when a concurrent redeemer won.
	MarkUsed(ctx context.Context, id int64, usedBy string, usedAt, sessionExpiresAt time.Time) error
}

type QRSessionRepository interface {
	Create(ctx context.Context, sess *domain.QRSession) error
	GetByToken(ctx context.Context, token string) (*domain.QRSession, error)
	GetByPattern(ctx context.Context, pattern string) (*domain.QRSession, error)

	// MarkScanned binds the scanning member and their PIN, keyed on
	// is_used=false. Returns domain.ErrAlreadyUsed on a second scan.
	MarkScanned(ctx context.Context, id int64, memberFingerprint, pin string, pinExpiresAt, scannedAt time.Time) error

	// Consume finishes the handshake, keyed on is_verified=false.
	Consume(ctx context.Context, id int64, verifiedAt time.Time) error

	RecordFailedAttempt(ctx context.Context, id int64, attempts int, lockoutUntil *time.Time) error
	ClearLockout(ctx context.Context, id int64) error
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
}

type MemberRepository interface {
	Create(ctx context.Context, m *domain.Member) error
	GetByID(ctx context.Context, id int64) (*domain.Member, error)
	GetByEmail(ctx context.Context, email string) (*domain.Member, error)
	GetByAuthFingerprint(ctx context.Context, fingerprint string) (*domain.Member, error)
	FingerprintExists(ctx context.Context, fingerprint string) (bool, error)

	// SetCredential stores the hash pair keyed on no credential being present,
	// so two concurrent activations mint exactly one key.
	SetCredential(ctx context.Context, id int64, hash, fingerprint string, issuedAt time.Time) error

	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

type RegisteredServiceRepository interface {
	GetByIDAndKey(ctx context.Context, id int64, apiKey string) (*domain.RegisteredService, error)
}

type LoginRepository interface {
	Record(ctx context.Context, rec *domain.LoginRecord) error
	Revoke(ctx context.Context, sessionToken string, at time.Time) error
}
