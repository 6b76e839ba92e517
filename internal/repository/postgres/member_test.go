package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whytehoux-projecty/MIS/internal/domain"
)

func TestMemberRepository_SetCredential(t *testing.T) {
	ctx := context.Background()

	t.Run("Mints Exactly Once", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewMemberRepository(db)

		issuedAt := time.Now()
		mock.ExpectExec(`UPDATE members SET auth_key_hash`).
			WithArgs(int64(12), "hash", "fingerprint", issuedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.SetCredential(ctx, 12, "hash", "fingerprint", issuedAt)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Existing Credential Conflicts", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewMemberRepository(db)

		mock.ExpectExec(`UPDATE members SET auth_key_hash`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.SetCredential(ctx, 12, "hash", "fingerprint", time.Now())
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestMemberRepository_GetByAuthFingerprint(t *testing.T) {
	ctx := context.Background()

	t.Run("Inactive Member Not Returned", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewMemberRepository(db)

		mock.ExpectQuery(`SELECT .+ FROM members WHERE auth_key_fingerprint`).
			WithArgs("deadbeef").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err = repo.GetByAuthFingerprint(ctx, "deadbeef")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewMemberRepository(db)

		issuedAt := time.Now()
		rows := sqlmock.NewRows([]string{
			"id", "username", "full_name", "email", "auth_key_hash", "auth_key_fingerprint",
			"is_active", "issued_at", "last_login",
		}).AddRow(int64(2), "ada", "Ada Lovelace", "ada@example.org", "hash", "deadbeef", true, issuedAt, nil)
		mock.ExpectQuery(`SELECT .+ FROM members WHERE auth_key_fingerprint`).
			WithArgs("deadbeef").
			WillReturnRows(rows)

		m, err := repo.GetByAuthFingerprint(ctx, "deadbeef")
		require.NoError(t, err)
		assert.Equal(t, "ada", m.Username)
		assert.True(t, m.IsActive)
		assert.Nil(t, m.LastLogin)
	})
}
