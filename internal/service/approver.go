package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/whytehoux-projecty/MIS/internal/domain"
	"github.com/whytehoux-projecty/MIS/internal/logger"
	"github.com/whytehoux-projecty/MIS/internal/repository"
	"github.com/whytehoux-projecty/MIS/internal/security"
)

// maxCredentialRetries bounds auth-key regeneration on a fingerprint
// collision. Collisions on a 64-char key are astronomically unlikely; the
// loop exists so a collision degrades to a retry instead of a failed
// activation.
const maxCredentialRetries = 3

type approverService struct {
	interests   repository.InterestRequestRepository
	invitations repository.InvitationRepository
	members     repository.MemberRepository
	issuer      InvitationService
	email       EmailService
	now         func() time.Time
}

func NewApproverService(
	interests repository.InterestRequestRepository,
	invitations repository.InvitationRepository,
	members repository.MemberRepository,
	issuer InvitationService,
	email EmailService,
) ApproverService {
	return &approverService{
		interests:   interests,
		invitations: invitations,
		members:     members,
		issuer:      issuer,
		email:       email,
		now:         time.Now,
	}
}

// Approve moves a pending request to APPROVED, issues the invitation, then
// moves it to INVITED with the invitation linked. Each hop is a
// compare-and-swap, so two admins approving the same request race to a single
// winner; the loser sees ErrConflict.
func (s *approverService) Approve(ctx context.Context, id int64, adminName, notes string) (*domain.InterestRequest, *domain.Invitation, error) {
	req, err := s.interests.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	next, err := domain.NextStatus(req.Status, domain.ActionApprove)
	if err != nil {
		return nil, nil, err
	}

	stamp := &domain.ReviewStamp{
		ReviewedBy: adminName,
		ReviewedAt: s.now().UTC(),
		AdminNotes: notes,
	}
	if err := s.interests.TransitionStatus(ctx, id, req.Status, next, stamp); err != nil {
		return nil, nil, err
	}
	req.Status = next
	req.ReviewedBy = adminName
	req.AdminNotes = notes

	inv, err := s.issuer.Issue(ctx, req.PrimaryEmail, req.DisplayName(), adminName)
	if err != nil {
		// Approval stands; the admin can re-issue once the blocker clears.
		logger.Error("invitation issuance failed after approval", "request_id", id, "error", err)
		return req, nil, err
	}

	invited, err := domain.NextStatus(req.Status, domain.ActionMarkInvited)
	if err != nil {
		return req, inv, err
	}
	linkStamp := &domain.ReviewStamp{ReviewedBy: adminName, ReviewedAt: s.now().UTC(), InvitationID: &inv.ID}
	if err := s.interests.TransitionStatus(ctx, id, req.Status, invited, linkStamp); err != nil {
		return req, inv, err
	}
	req.Status = invited
	req.InvitationID = &inv.ID

	s.sendInvitation(ctx, inv, req.DisplayName())
	logger.Info("interest request approved", "request_id", id, "invitation_id", inv.ID, "reviewed_by", adminName)
	return req, inv, nil
}

func (s *approverService) Reject(ctx context.Context, id int64, adminName, reason string) (*domain.InterestRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", domain.ErrValidation)
	}

	req, err := s.interests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := domain.NextStatus(req.Status, domain.ActionReject)
	if err != nil {
		return nil, err
	}

	stamp := &domain.ReviewStamp{
		ReviewedBy:      adminName,
		ReviewedAt:      s.now().UTC(),
		RejectionReason: reason,
	}
	if err := s.interests.TransitionStatus(ctx, id, req.Status, next, stamp); err != nil {
		return nil, err
	}
	req.Status = next
	req.ReviewedBy = adminName
	req.RejectionReason = reason

	if s.email != nil {
		if err := s.email.SendRejection(ctx, req.PrimaryEmail, req.DisplayName(), reason); err != nil {
			logger.Error("rejection email failed", "request_id", id, "error", err)
		}
	}
	logger.Info("interest request rejected", "request_id", id, "reviewed_by", adminName)
	return req, nil
}

func (s *approverService) RequestInfo(ctx context.Context, id int64, adminName, message string) (*domain.InterestRequest, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: a message describing the missing information is required", domain.ErrValidation)
	}

	req, err := s.interests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := domain.NextStatus(req.Status, domain.ActionRequestInfo)
	if err != nil {
		return nil, err
	}

	stamp := &domain.ReviewStamp{
		ReviewedBy:         adminName,
		ReviewedAt:         s.now().UTC(),
		InfoRequestMessage: message,
	}
	if err := s.interests.TransitionStatus(ctx, id, req.Status, next, stamp); err != nil {
		return nil, err
	}
	req.Status = next
	req.ReviewedBy = adminName
	req.InfoRequestMessage = message

	if s.email != nil {
		if err := s.email.SendInfoRequest(ctx, req.PrimaryEmail, req.DisplayName(), message); err != nil {
			logger.Error("info request email failed", "request_id", id, "error", err)
		}
	}
	return req, nil
}

// CreateDirect records an admin-entered applicant and immediately runs the
// approval path, so directly created members leave the same audit trail as
// external applicants.
func (s *approverService) CreateDirect(ctx context.Context, req *domain.InterestRequest, adminName string) (*domain.InterestRequest, *domain.Invitation, error) {
	req.PrimaryEmail = strings.ToLower(strings.TrimSpace(req.PrimaryEmail))
	if err := validateSubmission(req); err != nil {
		return nil, nil, err
	}

	existing, err := s.interests.GetByEmail(ctx, req.PrimaryEmail)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, err
	}
	if existing != nil {
		if msg, blocked := duplicateMessage(existing.Status); blocked {
			return nil, nil, fmt.Errorf("%w: %s", domain.ErrConflict, msg)
		}
	}

	req.Source = domain.SourceAdminDirect
	req.Status = domain.InterestStatusPending
	if err := s.interests.Create(ctx, req); err != nil {
		return nil, nil, err
	}

	return s.Approve(ctx, req.ID, adminName, req.AdminNotes)
}

// OpenRegistration starts the registration session and moves the applicant to
// REGISTRATION_STARTED on the first open. Later opens of a live session are
// idempotent.
func (s *approverService) OpenRegistration(ctx context.Context, urlToken string) (*domain.Invitation, *domain.TimeRemaining, error) {
	inv, remaining, err := s.issuer.OpenLink(ctx, urlToken)
	if err != nil {
		return nil, nil, err
	}

	req, err := s.interests.GetByEmail(ctx, inv.IntendedForEmail)
	if err != nil {
		return nil, nil, err
	}
	if req.Status == domain.InterestStatusInvited {
		if err := s.interests.TransitionStatus(ctx, req.ID, req.Status, domain.InterestStatusRegistrationStarted, &domain.ReviewStamp{ReviewedAt: s.now().UTC()}); err != nil && !errors.Is(err, domain.ErrConflict) {
			return nil, nil, err
		}
	}
	return inv, remaining, nil
}

// CompleteRegistration persists the registration form and moves the applicant
// to REGISTRATION_COMPLETE. The member row is created here without a
// credential; FinalizeActivation mints the key.
func (s *approverService) CompleteRegistration(ctx context.Context, urlToken string, form RegistrationForm) (*domain.InterestRequest, error) {
	if err := validateForm(form); err != nil {
		return nil, err
	}

	inv, err := s.invitations.GetByURLToken(ctx, urlToken)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if !inv.IsUsed {
		return nil, fmt.Errorf("%w: invitation code and pin must be verified first", domain.ErrValidation)
	}
	if !inv.SessionActive(now) {
		return nil, fmt.Errorf("%w: registration session has lapsed", domain.ErrExpired)
	}

	req, err := s.interests.GetByEmail(ctx, inv.IntendedForEmail)
	if err != nil {
		return nil, err
	}
	// Tolerate a completion that arrives before the open-link transition.
	if req.Status == domain.InterestStatusInvited {
		if err := s.interests.TransitionStatus(ctx, req.ID, req.Status, domain.InterestStatusRegistrationStarted, &domain.ReviewStamp{ReviewedAt: now}); err != nil && !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		req.Status = domain.InterestStatusRegistrationStarted
	}

	next, err := domain.NextStatus(req.Status, domain.ActionCompleteRegistration)
	if err != nil {
		return nil, err
	}

	member := &domain.Member{
		Username: form.Username,
		FullName: req.FullName(),
		Email:    req.PrimaryEmail,
		IsActive: false,
	}
	if err := s.members.Create(ctx, member); err != nil {
		return nil, err
	}

	if err := s.interests.TransitionStatus(ctx, req.ID, req.Status, next, &domain.ReviewStamp{ReviewedAt: now}); err != nil {
		return nil, err
	}
	req.Status = next

	logger.Info("registration completed", "request_id", req.ID, "member_id", member.ID)
	return req, nil
}

// FinalizeActivation mints the membership credential and activates the
// account. The plaintext auth key is returned exactly once and never stored.
func (s *approverService) FinalizeActivation(ctx context.Context, urlToken string) (*domain.Member, *domain.MembershipCredential, error) {
	inv, err := s.invitations.GetByURLToken(ctx, urlToken)
	if err != nil {
		return nil, nil, err
	}
	now := s.now().UTC()
	if !inv.IsUsed || !inv.SessionActive(now) {
		return nil, nil, fmt.Errorf("%w: registration session has lapsed", domain.ErrExpired)
	}

	req, err := s.interests.GetByEmail(ctx, inv.IntendedForEmail)
	if err != nil {
		return nil, nil, err
	}
	next, err := domain.NextStatus(req.Status, domain.ActionActivate)
	if err != nil {
		return nil, nil, err
	}

	member, err := s.members.GetByEmail(ctx, req.PrimaryEmail)
	if err != nil {
		return nil, nil, err
	}

	credential, err := s.mintCredential(ctx, member.ID, now)
	if err != nil {
		return nil, nil, err
	}

	if err := s.interests.TransitionStatus(ctx, req.ID, req.Status, next, &domain.ReviewStamp{ReviewedAt: now}); err != nil {
		return nil, nil, err
	}

	member.IsActive = true
	member.IssuedAt = credential.IssuedAt
	logger.Info("membership activated", "request_id", req.ID, "member_id", member.ID)
	return member, credential, nil
}

func (s *approverService) mintCredential(ctx context.Context, memberID int64, now time.Time) (*domain.MembershipCredential, error) {
	for i := 0; i < maxCredentialRetries; i++ {
		key := security.GenerateAuthKey()
		fingerprint := security.Fingerprint(key)

		exists, err := s.members.FingerprintExists(ctx, fingerprint)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		if err := s.members.SetCredential(ctx, memberID, string(hash), fingerprint, now); err != nil {
			return nil, err
		}
		return &domain.MembershipCredential{AuthKey: key, IssuedAt: now}, nil
	}
	return nil, fmt.Errorf("could not mint a unique membership credential after %d attempts", maxCredentialRetries)
}

func (s *approverService) sendInvitation(ctx context.Context, inv *domain.Invitation, name string) {
	if s.email == nil {
		return
	}
	if err := s.email.SendInvitation(ctx, inv, name); err != nil {
		logger.Error("invitation email failed", "invitation_id", inv.ID, "error", err)
	}
}

func validateForm(form RegistrationForm) error {
	if strings.TrimSpace(form.Username) == "" {
		return fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if len(form.Username) < 3 || len(form.Username) > 32 {
		return fmt.Errorf("%w: username must be between 3 and 32 characters", domain.ErrValidation)
	}
	if form.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", form.DateOfBirth); err != nil {
			return fmt.Errorf("%w: date of birth must be YYYY-MM-DD", domain.ErrValidation)
		}
	}
	return nil
}
