package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/whytehoux-projecty/MIS/internal/domain"
	"github.com/whytehoux-projecty/MIS/internal/repository"
)

type invitationRepository struct {
	db *sql.DB
}

func NewInvitationRepository(db *sql.DB) repository.InvitationRepository {
	return &invitationRepository{db: db}
}

const invitationColumns = `id, code, pin, url_token, created_by, intended_for_email, intended_for_name,
	created_at, expires_at, link_opened_at, session_expires_at, is_used, used_by, used_at`

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `INSERT INTO invitations
		(code, pin, url_token, created_by, intended_for_email, intended_for_name, created_at, expires_at, is_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE)
		RETURNING id`
	inv.CreatedAt = time.Now()
	return r.db.QueryRowContext(ctx, query,
		inv.Code, inv.Pin, inv.URLToken,
		nullString(inv.CreatedBy), nullString(inv.IntendedForEmail), nullString(inv.IntendedForName),
		inv.CreatedAt, inv.ExpiresAt,
	).Scan(&inv.ID)
}

func (r *invitationRepository) GetByCode(ctx context.Context, code string) (*domain.Invitation, error) {
	query := fmt.Sprintf(`SELECT %s FROM invitations WHERE code = $1`, invitationColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, code))
}

func (r *invitationRepository) GetByURLToken(ctx context.Context, urlToken string) (*domain.Invitation, error) {
	query := fmt.Sprintf(`SELECT %s FROM invitations WHERE url_token = $1`, invitationColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, urlToken))
}

func (r *invitationRepository) GetActiveByEmail(ctx context.Context, email string, now time.Time) (*domain.Invitation, error) {
	query := fmt.Sprintf(`SELECT %s FROM invitations
		WHERE intended_for_email = $1 AND is_used = FALSE AND expires_at > $2
		ORDER BY created_at DESC LIMIT 1`, invitationColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, email, now))
}

func (r *invitationRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM invitations WHERE code = $1)`, code).Scan(&exists)
	return exists, err
}

func (r *invitationRepository) URLTokenExists(ctx context.Context, urlToken string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM invitations WHERE url_token = $1)`, urlToken).Scan(&exists)
	return exists, err
}

func (r *invitationRepository) StartSession(ctx context.Context, id int64, openedAt, sessionExpiresAt time.Time) error {
	// Only the first open stamps the session window; the deadline never moves
	// after that.
	query := `UPDATE invitations SET link_opened_at = $2, session_expires_at = $3
		WHERE id = $1 AND link_opened_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id, openedAt, sessionExpiresAt)
	return err
}

func (r *invitationRepository) MarkUsed(ctx context.Context, id int64, usedBy string, usedAt, sessionExpiresAt time.Time) error {
	query := `UPDATE invitations SET is_used = TRUE, used_by = $2, used_at = $3,
		session_expires_at = COALESCE(session_expires_at, $4)
		WHERE id = $1 AND is_used = FALSE`
	res, err := r.db.ExecContext(ctx, query, id, usedBy, usedAt, sessionExpiresAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("invitation %d: %w", id, domain.ErrAlreadyUsed)
	}
	return nil
}

func (r *invitationRepository) scanOne(row *sql.Row) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	var createdBy, intendedEmail, intendedName, usedBy sql.NullString
	var linkOpenedAt, sessionExpiresAt, usedAt sql.NullTime
	err := row.Scan(
		&inv.ID, &inv.Code, &inv.Pin, &inv.URLToken,
		&createdBy, &intendedEmail, &intendedName,
		&inv.CreatedAt, &inv.ExpiresAt, &linkOpenedAt, &sessionExpiresAt,
		&inv.IsUsed, &usedBy, &usedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	inv.CreatedBy = createdBy.String
	inv.IntendedForEmail = intendedEmail.String
	inv.IntendedForName = intendedName.String
	inv.UsedBy = usedBy.String
	if linkOpenedAt.Valid {
		inv.LinkOpenedAt = &linkOpenedAt.Time
	}
	if sessionExpiresAt.Valid {
		inv.SessionExpiresAt = &sessionExpiresAt.Time
	}
	if usedAt.Valid {
		inv.UsedAt = &usedAt.Time
	}
	return inv, nil
}
