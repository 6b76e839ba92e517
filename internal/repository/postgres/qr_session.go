package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/whytehoux-projecty/MIS/internal/domain"
	"github.com/whytehoux-projecty/MIS/internal/repository"
)

type qrSessionRepository struct {
	db *sql.DB
}

func NewQRSessionRepository(db *sql.DB) repository.QRSessionRepository {
	return &qrSessionRepository{db: db}
}

const qrColumns = `id, token, service_id, session_code, qr_code_pattern, hidden_indices, status,
	member_auth_fingerprint, pin, pin_expires_at, scanned_at,
	is_used, is_verified, verified_at, failed_attempts, lockout_until, expires_at, created_at`

func (r *qrSessionRepository) Create(ctx context.Context, sess *domain.QRSession) error {
	query := `INSERT INTO qr_sessions
		(token, service_id, session_code, qr_code_pattern, hidden_indices, status, is_used, is_verified, failed_attempts, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, FALSE, 0, $7, $8)
		RETURNING id`
	sess.CreatedAt = time.Now()
	hidden := make(pq.Int64Array, len(sess.HiddenIndices))
	for i, v := range sess.HiddenIndices {
		hidden[i] = int64(v)
	}
	return r.db.QueryRowContext(ctx, query,
		sess.Token, sess.ServiceID, sess.SessionCode, sess.QRCodePattern, hidden,
		sess.Status, sess.ExpiresAt, sess.CreatedAt,
	).Scan(&sess.ID)
}

func (r *qrSessionRepository) GetByToken(ctx context.Context, token string) (*domain.QRSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM qr_sessions WHERE token = $1`, qrColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, token))
}

func (r *qrSessionRepository) GetByPattern(ctx context.Context, pattern string) (*domain.QRSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM qr_sessions WHERE qr_code_pattern = $1`, qrColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, pattern))
}

func (r *qrSessionRepository) MarkScanned(ctx context.Context, id int64, memberFingerprint, pin string, pinExpiresAt, scannedAt time.Time) error {
	query := `UPDATE qr_sessions SET
		member_auth_fingerprint = $2, pin = $3, pin_expires_at = $4, scanned_at = $5,
		is_used = TRUE, status = 'pin_generated'
		WHERE id = $1 AND is_used = FALSE`
	res, err := r.db.ExecContext(ctx, query, id, memberFingerprint, pin, pinExpiresAt, scannedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("qr session %d already scanned: %w", id, domain.ErrAlreadyUsed)
	}
	return nil
}

func (r *qrSessionRepository) Consume(ctx context.Context, id int64, verifiedAt time.Time) error {
	query := `UPDATE qr_sessions SET is_verified = TRUE, verified_at = $2, status = 'consumed'
		WHERE id = $1 AND is_verified = FALSE`
	res, err := r.db.ExecContext(ctx, query, id, verifiedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("qr session %d: %w", id, domain.ErrAlreadyUsed)
	}
	return nil
}

func (r *qrSessionRepository) RecordFailedAttempt(ctx context.Context, id int64, attempts int, lockoutUntil *time.Time) error {
	query := `UPDATE qr_sessions SET failed_attempts = $2, lockout_until = $3 WHERE id = $1`
	var lockout interface{}
	if lockoutUntil != nil {
		lockout = *lockoutUntil
	}
	_, err := r.db.ExecContext(ctx, query, id, attempts, lockout)
	return err
}

func (r *qrSessionRepository) ClearLockout(ctx context.Context, id int64) error {
	query := `UPDATE qr_sessions SET failed_attempts = 0, lockout_until = NULL WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *qrSessionRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE qr_sessions SET status = 'expired'
		WHERE expires_at < $1 AND status IN ('issued', 'pin_generated')`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *qrSessionRepository) scanOne(row *sql.Row) (*domain.QRSession, error) {
	sess := &domain.QRSession{}
	var fingerprint, pin sql.NullString
	var pinExpiresAt, scannedAt, verifiedAt, lockoutUntil sql.NullTime
	var hidden pq.Int64Array
	err := row.Scan(
		&sess.ID, &sess.Token, &sess.ServiceID, &sess.SessionCode, &sess.QRCodePattern, &hidden,
		&sess.Status, &fingerprint, &pin, &pinExpiresAt, &scannedAt,
		&sess.IsUsed, &sess.IsVerified, &verifiedAt, &sess.FailedAttempts, &lockoutUntil,
		&sess.ExpiresAt, &sess.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	sess.MemberAuthFingerprint = fingerprint.String
	sess.Pin = pin.String
	if pinExpiresAt.Valid {
		sess.PinExpiresAt = &pinExpiresAt.Time
	}
	if scannedAt.Valid {
		sess.ScannedAt = &scannedAt.Time
	}
	if verifiedAt.Valid {
		sess.VerifiedAt = &verifiedAt.Time
	}
	if lockoutUntil.Valid {
		sess.LockoutUntil = &lockoutUntil.Time
	}
	sess.HiddenIndices = make([]int, len(hidden))
	for i, v := range hidden {
		sess.HiddenIndices[i] = int(v)
	}
	return sess, nil
}
