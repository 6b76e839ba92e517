package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/whytehoux-projecty/MIS/internal/domain"
	"github.com/whytehoux-projecty/MIS/internal/service"
)

func validRequest() *domain.InterestRequest {
	return &domain.InterestRequest{
		GivenName:     "Ada",
		FamilyName:    "Lovelace",
		Gender:        domain.GenderFemale,
		MaritalStatus: domain.MaritalSingleNoRelationship,
		PrimaryEmail:  "ada@example.org",
		PrimaryPhone:  "+1-555-0100",
	}
}

func TestInterestService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockInterestRepo)
		svc := service.NewInterestService(repo)

		repo.On("GetByEmail", ctx, "ada@example.org").Return(nil, domain.ErrNotFound)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.InterestRequest")).Return(nil)

		created, err := svc.Submit(ctx, validRequest())
		assert.NoError(t, err)
		assert.Equal(t, domain.InterestStatusPending, created.Status)
		assert.Equal(t, domain.SourceExternalSpace, created.Source)
		repo.AssertExpectations(t)
	})

	t.Run("Normalizes Email", func(t *testing.T) {
		repo := new(MockInterestRepo)
		svc := service.NewInterestService(repo)

		repo.On("GetByEmail", ctx, "ada@example.org").Return(nil, domain.ErrNotFound)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.InterestRequest")).Return(nil)

		req := validRequest()
		req.PrimaryEmail = "  ADA@Example.org "
		created, err := svc.Submit(ctx, req)
		assert.NoError(t, err)
		assert.Equal(t, "ada@example.org", created.PrimaryEmail)
	})

	t.Run("Missing Name", func(t *testing.T) {
		repo := new(MockInterestRepo)
		svc := service.NewInterestService(repo)

		req := validRequest()
		req.GivenName = ""
		_, err := svc.Submit(ctx, req)
		assert.ErrorIs(t, err, domain.ErrValidation)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("Referral Claimed Without ID", func(t *testing.T) {
		repo := new(MockInterestRepo)
		svc := service.NewInterestService(repo)

		req := validRequest()
		req.HasReferral = true
		_, err := svc.Submit(ctx, req)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Duplicate Pending Blocks", func(t *testing.T) {
		repo := new(MockInterestRepo)
		svc := service.NewInterestService(repo)

		existing := validRequest()
		existing.Status = domain.InterestStatusPending
		repo.On("GetByEmail", ctx, "ada@example.org").Return(existing, nil)

		_, err := svc.Submit(ctx, validRequest())
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Contains(t, err.Error(), "under review")
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("Duplicate Activated Blocks", func(t *testing.T) {
		repo := new(MockInterestRepo)
		svc := service.NewInterestService(repo)

		existing := validRequest()
		existing.Status = domain.InterestStatusActivated
		repo.On("GetByEmail", ctx, "ada@example.org").Return(existing, nil)

		_, err := svc.Submit(ctx, validRequest())
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Contains(t, err.Error(), "active member")
	})

	t.Run("Expired Allows Reapply", func(t *testing.T) {
		repo := new(MockInterestRepo)
		svc := service.NewInterestService(repo)

		existing := validRequest()
		existing.Status = domain.InterestStatusExpired
		repo.On("GetByEmail", ctx, "ada@example.org").Return(existing, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.InterestRequest")).Return(nil)

		created, err := svc.Submit(ctx, validRequest())
		assert.NoError(t, err)
		assert.Equal(t, domain.InterestStatusPending, created.Status)
	})
}

func TestInterestService_RespondInfo(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns To Pending", func(t *testing.T) {
		repo := new(MockInterestRepo)
		svc := service.NewInterestService(repo)

		existing := validRequest()
		existing.ID = 7
		existing.Status = domain.InterestStatusInfoRequested
		repo.On("GetByID", ctx, int64(7)).Return(existing, nil)
		repo.On("TransitionStatus", ctx, int64(7), domain.InterestStatusInfoRequested, domain.InterestStatusPending, mock.AnythingOfType("*domain.ReviewStamp")).Return(nil)

		updated, err := svc.RespondInfo(ctx, 7, "here are my documents")
		assert.NoError(t, err)
		assert.Equal(t, domain.InterestStatusPending, updated.Status)
		assert.Equal(t, "here are my documents", updated.InfoResponse)
	})

	t.Run("Wrong Status", func(t *testing.T) {
		repo := new(MockInterestRepo)
		svc := service.NewInterestService(repo)

		existing := validRequest()
		existing.ID = 8
		existing.Status = domain.InterestStatusPending
		repo.On("GetByID", ctx, int64(8)).Return(existing, nil)

		_, err := svc.RespondInfo(ctx, 8, "unsolicited")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		repo.AssertNotCalled(t, "TransitionStatus")
	})

	t.Run("Empty Response", func(t *testing.T) {
		repo := new(MockInterestRepo)
		svc := service.NewInterestService(repo)

		_, err := svc.RespondInfo(ctx, 9, "   ")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestInterestService_Stats(t *testing.T) {
	ctx := context.Background()
	repo := new(MockInterestRepo)
	svc := service.NewInterestService(repo)

	repo.On("CountByStatus", ctx).Return(map[domain.InterestStatus]int{
		domain.InterestStatusPending: 3,
	}, nil)

	counts, err := svc.Stats(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 3, counts[domain.InterestStatusPending])
	// Every bucket reports, even when empty.
	assert.Len(t, counts, len(domain.AllInterestStatuses))
	assert.Equal(t, 0, counts[domain.InterestStatusRejected])
}
