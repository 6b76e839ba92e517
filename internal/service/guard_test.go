package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/whytehoux-projecty/MIS/internal/domain"
	"github.com/whytehoux-projecty/MIS/internal/securestore"
	"github.com/whytehoux-projecty/MIS/internal/service"
)

type fakeInvalidator struct {
	revoked []string
	err     error
}

func (f *fakeInvalidator) Revoke(ctx context.Context, token string) error {
	f.revoked = append(f.revoked, token)
	return f.err
}

func TestGuard_SessionLifecycle(t *testing.T) {
	user := domain.UserInfo{UserID: 21, Username: "ada_l", Email: "ada@example.org"}

	t.Run("Set And Get", func(t *testing.T) {
		guard := service.NewGuard(securestore.NewMemoryStore())
		assert.NoError(t, guard.SetSession("tok-1", user, 1800))

		sess, err := guard.GetSession()
		assert.NoError(t, err)
		assert.NotNil(t, sess)
		assert.Equal(t, "tok-1", sess.Token)
		assert.Equal(t, user.Username, sess.User.Username)
	})

	t.Run("Empty Store", func(t *testing.T) {
		guard := service.NewGuard(securestore.NewMemoryStore())
		sess, err := guard.GetSession()
		assert.NoError(t, err)
		assert.Nil(t, sess)
	})

	t.Run("Lapsed Session Cleared Lazily", func(t *testing.T) {
		store := securestore.NewMemoryStore()
		guard := service.NewGuard(store)
		assert.NoError(t, guard.SetSession("tok-1", user, -1))

		sess, err := guard.GetSession()
		assert.NoError(t, err)
		assert.Nil(t, sess)

		// The lapsed material is gone from the store, not just hidden.
		_, err = store.Get("mis_session_token")
		assert.ErrorIs(t, err, securestore.ErrNotFound)
	})

	t.Run("Clear Keeps Biometric Preference", func(t *testing.T) {
		store := securestore.NewMemoryStore()
		guard := service.NewGuard(store)
		assert.NoError(t, guard.SetSession("tok-1", user, 1800))
		assert.NoError(t, guard.SetBiometricEnabled(true))

		guard.ClearSession()

		sess, _ := guard.GetSession()
		assert.Nil(t, sess)
		assert.True(t, guard.BiometricEnabled())
	})
}

func TestGuard_Logout(t *testing.T) {
	user := domain.UserInfo{UserID: 21, Username: "ada_l"}

	t.Run("Revokes Remotely And Clears", func(t *testing.T) {
		guard := service.NewGuard(securestore.NewMemoryStore())
		assert.NoError(t, guard.SetSession("tok-1", user, 1800))

		remote := &fakeInvalidator{}
		guard.Logout(context.Background(), remote)

		assert.Equal(t, []string{"tok-1"}, remote.revoked)
		sess, _ := guard.GetSession()
		assert.Nil(t, sess)
	})

	t.Run("Clears Locally When Remote Fails", func(t *testing.T) {
		guard := service.NewGuard(securestore.NewMemoryStore())
		assert.NoError(t, guard.SetSession("tok-1", user, 1800))

		remote := &fakeInvalidator{err: errors.New("network down")}
		guard.Logout(context.Background(), remote)

		sess, _ := guard.GetSession()
		assert.Nil(t, sess)
	})

	t.Run("No Session No Remote Call", func(t *testing.T) {
		guard := service.NewGuard(securestore.NewMemoryStore())
		remote := &fakeInvalidator{}
		guard.Logout(context.Background(), remote)
		assert.Empty(t, remote.revoked)
	})
}
