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

type memberRepository struct {
	db *sql.DB
}

func NewMemberRepository(db *sql.DB) repository.MemberRepository {
	return &memberRepository{db: db}
}

const memberColumns = `id, username, full_name, email, auth_key_hash, auth_key_fingerprint, is_active, issued_at, last_login`

func (r *memberRepository) Create(ctx context.Context, m *domain.Member) error {
	query := `INSERT INTO members (username, full_name, email, is_active)
		VALUES ($1, $2, $3, $4) RETURNING id`
	return r.db.QueryRowContext(ctx, query, m.Username, m.FullName, m.Email, m.IsActive).Scan(&m.ID)
}

func (r *memberRepository) GetByID(ctx context.Context, id int64) (*domain.Member, error) {
	query := fmt.Sprintf(`SELECT %s FROM members WHERE id = $1`, memberColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *memberRepository) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	query := fmt.Sprintf(`SELECT %s FROM members WHERE email = $1`, memberColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *memberRepository) GetByAuthFingerprint(ctx context.Context, fingerprint string) (*domain.Member, error) {
	query := fmt.Sprintf(`SELECT %s FROM members WHERE auth_key_fingerprint = $1 AND is_active = TRUE`, memberColumns)
	return r.scanOne(r.db.QueryRowContext(ctx, query, fingerprint))
}

func (r *memberRepository) FingerprintExists(ctx context.Context, fingerprint string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM members WHERE auth_key_fingerprint = $1)`, fingerprint).Scan(&exists)
	return exists, err
}

func (r *memberRepository) SetCredential(ctx context.Context, id int64, hash, fingerprint string, issuedAt time.Time) error {
	// Keyed on no credential being present so concurrent activations mint
	// exactly one key.
	query := `UPDATE members SET auth_key_hash = $2, auth_key_fingerprint = $3, issued_at = $4, is_active = TRUE
		WHERE id = $1 AND auth_key_fingerprint IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, hash, fingerprint, issuedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("member %d already has a credential: %w", id, domain.ErrConflict)
	}
	return nil
}

func (r *memberRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE members SET last_login = $2 WHERE id = $1`, id, at)
	return err
}

func (r *memberRepository) scanOne(row *sql.Row) (*domain.Member, error) {
	m := &domain.Member{}
	var hash, fingerprint sql.NullString
	var issuedAt, lastLogin sql.NullTime
	err := row.Scan(&m.ID, &m.Username, &m.FullName, &m.Email, &hash, &fingerprint, &m.IsActive, &issuedAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	m.AuthKeyHash = hash.String
	m.AuthKeyFingerprint = fingerprint.String
	if issuedAt.Valid {
		m.IssuedAt = issuedAt.Time
	}
	if lastLogin.Valid {
		m.LastLogin = &lastLogin.Time
	}
	return m, nil
}
