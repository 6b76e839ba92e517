package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/whytehoux-projecty/MIS/internal/domain"
	"github.com/whytehoux-projecty/MIS/internal/logger"
	"github.com/whytehoux-projecty/MIS/internal/repository"
)

type interestService struct {
	interests repository.InterestRequestRepository
}

func NewInterestService(interests repository.InterestRequestRepository) InterestService {
	return &interestService{interests: interests}
}

// duplicateMessage maps an existing request's status to the message shown to
// someone re-submitting the same email. A lapsed (EXPIRED) request does not
// block a fresh application.
func duplicateMessage(status domain.InterestStatus) (string, bool) {
	switch status {
	case domain.InterestStatusPending, domain.InterestStatusInfoRequested:
		return "an application for this email is already under review", true
	case domain.InterestStatusApproved, domain.InterestStatusInvited,
		domain.InterestStatusRegistrationStarted, domain.InterestStatusRegistrationComplete:
		return "this email has already been approved; check your inbox for the invitation", true
	case domain.InterestStatusActivated:
		return "this email already belongs to an active member", true
	case domain.InterestStatusRejected:
		return "a previous application for this email was declined", true
	default:
		return "", false
	}
}

func (s *interestService) Submit(ctx context.Context, req *domain.InterestRequest) (*domain.InterestRequest, error) {
	req.PrimaryEmail = strings.ToLower(strings.TrimSpace(req.PrimaryEmail))
	if err := validateSubmission(req); err != nil {
		return nil, err
	}

	existing, err := s.interests.GetByEmail(ctx, req.PrimaryEmail)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if msg, blocked := duplicateMessage(existing.Status); blocked {
			return nil, fmt.Errorf("%w: %s", domain.ErrConflict, msg)
		}
	}

	if req.Source == "" {
		req.Source = domain.SourceExternalSpace
	}
	req.Status = domain.InterestStatusPending
	if err := s.interests.Create(ctx, req); err != nil {
		return nil, err
	}

	logger.Info("interest request submitted", "id", req.ID, "source", req.Source)
	return req, nil
}

func (s *interestService) GetByID(ctx context.Context, id int64) (*domain.InterestRequest, error) {
	return s.interests.GetByID(ctx, id)
}

func (s *interestService) GetStatusByEmail(ctx context.Context, email string) (*domain.InterestRequest, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	return s.interests.GetByEmail(ctx, email)
}

func (s *interestService) RespondInfo(ctx context.Context, id int64, response string) (*domain.InterestRequest, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, fmt.Errorf("%w: response is required", domain.ErrValidation)
	}

	req, err := s.interests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := domain.NextStatus(req.Status, domain.ActionRespondInfo)
	if err != nil {
		return nil, err
	}

	stamp := &domain.ReviewStamp{InfoResponse: response, ReviewedAt: time.Now().UTC()}
	if err := s.interests.TransitionStatus(ctx, id, req.Status, next, stamp); err != nil {
		return nil, err
	}
	req.Status = next
	req.InfoResponse = response
	return req, nil
}

func (s *interestService) List(ctx context.Context, status domain.InterestStatus, limit, offset int) ([]domain.InterestRequest, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.interests.List(ctx, status, int32(limit), int32(offset))
}

func (s *interestService) Stats(ctx context.Context) (map[domain.InterestStatus]int, error) {
	counts, err := s.interests.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	// Report zeroes for statuses with no rows so dashboards see every bucket.
	for _, st := range domain.AllInterestStatuses {
		if _, ok := counts[st]; !ok {
			counts[st] = 0
		}
	}
	return counts, nil
}

func validateSubmission(req *domain.InterestRequest) error {
	if strings.TrimSpace(req.GivenName) == "" || strings.TrimSpace(req.FamilyName) == "" {
		return fmt.Errorf("%w: given and family name are required", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(req.PrimaryEmail); err != nil {
		return fmt.Errorf("%w: invalid email address", domain.ErrValidation)
	}
	if strings.TrimSpace(req.PrimaryPhone) == "" {
		return fmt.Errorf("%w: phone number is required", domain.ErrValidation)
	}
	if req.HasReferral && strings.TrimSpace(req.ReferralMemberID) == "" {
		return fmt.Errorf("%w: referral member id is required when a referral is claimed", domain.ErrValidation)
	}
	return nil
}
