package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/whytehoux-projecty/MIS/internal/domain"
	"github.com/whytehoux-projecty/MIS/internal/repository"
)

type loginRepository struct {
	db *sql.DB
}

func NewLoginRepository(db *sql.DB) repository.LoginRepository {
	return &loginRepository{db: db}
}

func (r *loginRepository) Record(ctx context.Context, rec *domain.LoginRecord) error {
	query := `INSERT INTO login_history (user_id, service_id, session_token, login_at, session_expires_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		rec.UserID, rec.ServiceID, rec.SessionToken, rec.LoginAt, rec.SessionExpiresAt,
	).Scan(&rec.ID)
}

func (r *loginRepository) Revoke(ctx context.Context, sessionToken string, at time.Time) error {
	query := `UPDATE login_history SET revoked_at = $2 WHERE session_token = $1 AND revoked_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, sessionToken, at)
	return err
}
