package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/whytehoux-projecty/MIS/internal/config"
	"github.com/whytehoux-projecty/MIS/internal/domain"
	"github.com/whytehoux-projecty/MIS/internal/service"
)

func invitationConfig() config.InvitationConfig {
	return config.InvitationConfig{
		DefaultExpiryHours: 24,
		SessionHours:       5,
		CodeLength:         15,
		PinLength:          6,
	}
}

func TestInvitationService_Issue(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockInvitationRepo)
		svc := service.NewInvitationService(repo, invitationConfig())

		repo.On("GetActiveByEmail", ctx, "ada@example.org", mock.AnythingOfType("time.Time")).Return(nil, domain.ErrNotFound)
		repo.On("CodeExists", ctx, mock.AnythingOfType("string")).Return(false, nil)
		repo.On("URLTokenExists", ctx, mock.AnythingOfType("string")).Return(false, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Invitation")).Return(nil)

		inv, err := svc.Issue(ctx, "ada@example.org", "Ada", "admin")
		assert.NoError(t, err)
		assert.Len(t, inv.Code, 15)
		assert.Len(t, inv.Pin, 6)
		assert.Len(t, inv.URLToken, 64)
		assert.Equal(t, "admin", inv.CreatedBy)
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), inv.ExpiresAt, time.Minute)
	})

	t.Run("Active Invitation Blocks Reissue", func(t *testing.T) {
		repo := new(MockInvitationRepo)
		svc := service.NewInvitationService(repo, invitationConfig())

		active := &domain.Invitation{ID: 1, ExpiresAt: time.Now().Add(time.Hour)}
		repo.On("GetActiveByEmail", ctx, "ada@example.org", mock.AnythingOfType("time.Time")).Return(active, nil)

		_, err := svc.Issue(ctx, "ada@example.org", "Ada", "admin")
		assert.ErrorIs(t, err, domain.ErrConflict)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("Regenerates On Code Collision", func(t *testing.T) {
		repo := new(MockInvitationRepo)
		svc := service.NewInvitationService(repo, invitationConfig())

		repo.On("GetActiveByEmail", ctx, "ada@example.org", mock.AnythingOfType("time.Time")).Return(nil, domain.ErrNotFound)
		repo.On("CodeExists", ctx, mock.AnythingOfType("string")).Return(true, nil).Once()
		repo.On("CodeExists", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
		repo.On("URLTokenExists", ctx, mock.AnythingOfType("string")).Return(false, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Invitation")).Return(nil)

		_, err := svc.Issue(ctx, "ada@example.org", "Ada", "admin")
		assert.NoError(t, err)
		repo.AssertNumberOfCalls(t, "CodeExists", 2)
	})
}

func TestInvitationService_Redeem(t *testing.T) {
	ctx := context.Background()

	freshInvitation := func() *domain.Invitation {
		return &domain.Invitation{
			ID:               4,
			Code:             "abc123def456ghi",
			Pin:              "654321",
			IntendedForEmail: "ada@example.org",
			ExpiresAt:        time.Now().Add(time.Hour),
		}
	}

	t.Run("Success", func(t *testing.T) {
		repo := new(MockInvitationRepo)
		svc := service.NewInvitationService(repo, invitationConfig())

		repo.On("GetByCode", ctx, "abc123def456ghi").Return(freshInvitation(), nil)
		repo.On("MarkUsed", ctx, int64(4), "ada@example.org", mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(nil)

		inv, err := svc.Redeem(ctx, "abc123def456ghi", "654321")
		assert.NoError(t, err)
		assert.True(t, inv.IsUsed)
		assert.NotNil(t, inv.SessionExpiresAt)
	})

	t.Run("Wrong Pin", func(t *testing.T) {
		repo := new(MockInvitationRepo)
		svc := service.NewInvitationService(repo, invitationConfig())

		repo.On("GetByCode", ctx, "abc123def456ghi").Return(freshInvitation(), nil)

		_, err := svc.Redeem(ctx, "abc123def456ghi", "000000")
		assert.ErrorIs(t, err, domain.ErrInvalidCredential)
		repo.AssertNotCalled(t, "MarkUsed")
	})

	t.Run("Expired Link", func(t *testing.T) {
		repo := new(MockInvitationRepo)
		svc := service.NewInvitationService(repo, invitationConfig())

		inv := freshInvitation()
		inv.ExpiresAt = time.Now().Add(-time.Minute)
		repo.On("GetByCode", ctx, "abc123def456ghi").Return(inv, nil)

		_, err := svc.Redeem(ctx, "abc123def456ghi", "654321")
		assert.ErrorIs(t, err, domain.ErrExpired)
	})

	t.Run("Already Used", func(t *testing.T) {
		repo := new(MockInvitationRepo)
		svc := service.NewInvitationService(repo, invitationConfig())

		inv := freshInvitation()
		inv.IsUsed = true
		repo.On("GetByCode", ctx, "abc123def456ghi").Return(inv, nil)

		_, err := svc.Redeem(ctx, "abc123def456ghi", "654321")
		assert.ErrorIs(t, err, domain.ErrAlreadyUsed)
	})

	t.Run("Used And Expired Reports Expired", func(t *testing.T) {
		repo := new(MockInvitationRepo)
		svc := service.NewInvitationService(repo, invitationConfig())

		inv := freshInvitation()
		inv.IsUsed = true
		inv.ExpiresAt = time.Now().Add(-time.Hour)
		repo.On("GetByCode", ctx, "abc123def456ghi").Return(inv, nil)

		_, err := svc.Redeem(ctx, "abc123def456ghi", "654321")
		assert.ErrorIs(t, err, domain.ErrExpired)
		assert.NotErrorIs(t, err, domain.ErrAlreadyUsed)
	})

	t.Run("Redeem By URL Token", func(t *testing.T) {
		repo := new(MockInvitationRepo)
		svc := service.NewInvitationService(repo, invitationConfig())

		inv := freshInvitation()
		inv.URLToken = "UrlTok3n"
		repo.On("GetByCode", ctx, "urltok3n").Return(nil, domain.ErrNotFound)
		repo.On("GetByURLToken", ctx, "UrlTok3n").Return(inv, nil)
		repo.On("MarkUsed", ctx, int64(4), "ada@example.org", mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(nil)

		redeemed, err := svc.Redeem(ctx, "UrlTok3n", "654321")
		assert.NoError(t, err)
		assert.True(t, redeemed.IsUsed)
	})

	t.Run("Concurrent Redeemer Lost", func(t *testing.T) {
		repo := new(MockInvitationRepo)
		svc := service.NewInvitationService(repo, invitationConfig())

		repo.On("GetByCode", ctx, "abc123def456ghi").Return(freshInvitation(), nil)
		repo.On("MarkUsed", ctx, int64(4), "ada@example.org", mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(domain.ErrAlreadyUsed)

		_, err := svc.Redeem(ctx, "abc123def456ghi", "654321")
		assert.ErrorIs(t, err, domain.ErrAlreadyUsed)
	})

	t.Run("Lapsed Registration Session", func(t *testing.T) {
		repo := new(MockInvitationRepo)
		svc := service.NewInvitationService(repo, invitationConfig())

		inv := freshInvitation()
		opened := time.Now().Add(-6 * time.Hour)
		lapsed := time.Now().Add(-time.Hour)
		inv.LinkOpenedAt = &opened
		inv.SessionExpiresAt = &lapsed
		repo.On("GetByCode", ctx, "abc123def456ghi").Return(inv, nil)

		_, err := svc.Redeem(ctx, "abc123def456ghi", "654321")
		assert.ErrorIs(t, err, domain.ErrExpired)
	})
}

func TestInvitationService_OpenLink(t *testing.T) {
	ctx := context.Background()

	t.Run("First Open Starts Session", func(t *testing.T) {
		repo := new(MockInvitationRepo)
		svc := service.NewInvitationService(repo, invitationConfig())

		inv := &domain.Invitation{ID: 5, URLToken: "tok", ExpiresAt: time.Now().Add(time.Hour)}
		repo.On("GetByURLToken", ctx, "tok").Return(inv, nil)
		repo.On("StartSession", ctx, int64(5), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(nil)

		opened, remaining, err := svc.OpenLink(ctx, "tok")
		assert.NoError(t, err)
		assert.NotNil(t, opened.LinkOpenedAt)
		assert.NotNil(t, opened.SessionExpiresAt)
		assert.InDelta(t, 5*3600, remaining.SessionRemainingSeconds, 5)
	})

	t.Run("Second Open Keeps Deadline", func(t *testing.T) {
		repo := new(MockInvitationRepo)
		svc := service.NewInvitationService(repo, invitationConfig())

		opened := time.Now().Add(-time.Hour)
		deadline := time.Now().Add(4 * time.Hour)
		inv := &domain.Invitation{
			ID:               5,
			URLToken:         "tok",
			ExpiresAt:        time.Now().Add(23 * time.Hour),
			LinkOpenedAt:     &opened,
			SessionExpiresAt: &deadline,
		}
		repo.On("GetByURLToken", ctx, "tok").Return(inv, nil)

		_, remaining, err := svc.OpenLink(ctx, "tok")
		assert.NoError(t, err)
		assert.InDelta(t, 4*3600, remaining.SessionRemainingSeconds, 5)
		repo.AssertNotCalled(t, "StartSession")
	})

	t.Run("Lapsed Session", func(t *testing.T) {
		repo := new(MockInvitationRepo)
		svc := service.NewInvitationService(repo, invitationConfig())

		opened := time.Now().Add(-6 * time.Hour)
		deadline := time.Now().Add(-time.Hour)
		inv := &domain.Invitation{
			ID:               5,
			URLToken:         "tok",
			ExpiresAt:        time.Now().Add(time.Hour),
			LinkOpenedAt:     &opened,
			SessionExpiresAt: &deadline,
		}
		repo.On("GetByURLToken", ctx, "tok").Return(inv, nil)

		_, _, err := svc.OpenLink(ctx, "tok")
		assert.ErrorIs(t, err, domain.ErrExpired)
	})
}
