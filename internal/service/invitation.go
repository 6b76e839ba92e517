package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/whytehoux-projecty/MIS/internal/config"
	"github.com/whytehoux-projecty/MIS/internal/domain"
	"github.com/whytehoux-projecty/MIS/internal/logger"
	"github.com/whytehoux-projecty/MIS/internal/repository"
	"github.com/whytehoux-projecty/MIS/internal/security"
)

// maxGenerateRetries bounds regeneration when a fresh code or url token
// collides with an existing row.
const maxGenerateRetries = 5

type invitationService struct {
	invitations repository.InvitationRepository
	cfg         config.InvitationConfig
	now         func() time.Time
}

func NewInvitationService(invitations repository.InvitationRepository, cfg config.InvitationConfig) InvitationService {
	return &invitationService{
		invitations: invitations,
		cfg:         cfg,
		now:         time.Now,
	}
}

func (s *invitationService) Issue(ctx context.Context, email, memberName, invitedBy string) (*domain.Invitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}

	now := s.now().UTC()
	if active, err := s.invitations.GetActiveByEmail(ctx, email, now); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	} else if active != nil {
		return nil, fmt.Errorf("%w: an unused invitation for %s is still valid until %s",
			domain.ErrConflict, email, active.ExpiresAt.Format(time.RFC3339))
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}
	urlToken, err := s.uniqueURLToken(ctx)
	if err != nil {
		return nil, err
	}

	inv := &domain.Invitation{
		Code:             code,
		Pin:              security.GeneratePin(s.cfg.PinLength),
		URLToken:         urlToken,
		CreatedBy:        invitedBy,
		IntendedForEmail: email,
		IntendedForName:  memberName,
		CreatedAt:        now,
		ExpiresAt:        now.Add(time.Duration(s.cfg.DefaultExpiryHours) * time.Hour),
	}
	if err := s.invitations.Create(ctx, inv); err != nil {
		return nil, err
	}

	logger.Info("invitation issued", "invitation_id", inv.ID, "created_by", invitedBy)
	return inv, nil
}

func (s *invitationService) uniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < maxGenerateRetries; i++ {
		code := security.GenerateInvitationCode(s.cfg.CodeLength)
		exists, err := s.invitations.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique invitation code after %d attempts", maxGenerateRetries)
}

func (s *invitationService) uniqueURLToken(ctx context.Context) (string, error) {
	for i := 0; i < maxGenerateRetries; i++ {
		token := security.GenerateURLToken()
		exists, err := s.invitations.URLTokenExists(ctx, token)
		if err != nil {
			return "", err
		}
		if !exists {
			return token, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique url token after %d attempts", maxGenerateRetries)
}

// lookup resolves a redemption identifier, accepting either the human-typed
// code or the url token from the invitation link.
func (s *invitationService) lookup(ctx context.Context, identifier string) (*domain.Invitation, error) {
	inv, err := s.invitations.GetByCode(ctx, strings.ToLower(identifier))
	if errors.Is(err, domain.ErrNotFound) {
		return s.invitations.GetByURLToken(ctx, identifier)
	}
	return inv, err
}

// Redeem consumes the invitation after a code+PIN check. The PIN comparison is
// constant-time; the consume itself is a compare-and-swap, so exactly one of
// two concurrent redeemers succeeds. Expiry is checked before use history: a
// lapsed invitation reports Expired no matter what happened to it earlier.
func (s *invitationService) Redeem(ctx context.Context, identifier, pin string) (*domain.Invitation, error) {
	identifier = strings.TrimSpace(identifier)
	pin = strings.TrimSpace(pin)
	if identifier == "" || pin == "" {
		return nil, fmt.Errorf("%w: code and pin are required", domain.ErrValidation)
	}

	inv, err := s.lookup(ctx, identifier)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if !inv.LinkValid(now) {
		return nil, fmt.Errorf("%w: invitation expired at %s", domain.ErrExpired, inv.ExpiresAt.Format(time.RFC3339))
	}
	if inv.LinkOpenedAt != nil && !inv.SessionActive(now) {
		return nil, fmt.Errorf("%w: registration session has lapsed", domain.ErrExpired)
	}
	if inv.IsUsed {
		return nil, fmt.Errorf("%w: invitation already redeemed", domain.ErrAlreadyUsed)
	}
	if !security.ConstantTimeEquals(pin, inv.Pin) {
		return nil, fmt.Errorf("%w: incorrect pin", domain.ErrInvalidCredential)
	}

	sessionEnd := now.Add(time.Duration(s.cfg.SessionHours) * time.Hour)
	if err := s.invitations.MarkUsed(ctx, inv.ID, inv.IntendedForEmail, now, sessionEnd); err != nil {
		return nil, err
	}

	inv.IsUsed = true
	inv.UsedBy = inv.IntendedForEmail
	inv.UsedAt = &now
	if inv.SessionExpiresAt == nil {
		inv.SessionExpiresAt = &sessionEnd
	}
	logger.Info("invitation redeemed", "invitation_id", inv.ID)
	return inv, nil
}

// OpenLink starts the registration session on first open. Re-opening a live
// session returns the original deadline; the clock never restarts.
func (s *invitationService) OpenLink(ctx context.Context, urlToken string) (*domain.Invitation, *domain.TimeRemaining, error) {
	inv, err := s.invitations.GetByURLToken(ctx, urlToken)
	if err != nil {
		return nil, nil, err
	}

	now := s.now().UTC()
	if !inv.LinkValid(now) {
		return nil, nil, fmt.Errorf("%w: invitation link has expired", domain.ErrExpired)
	}
	if inv.IsUsed {
		return nil, nil, fmt.Errorf("%w: invitation already redeemed", domain.ErrAlreadyUsed)
	}

	fullSession := time.Duration(s.cfg.SessionHours) * time.Hour
	if inv.LinkOpenedAt == nil {
		sessionEnd := now.Add(fullSession)
		if err := s.invitations.StartSession(ctx, inv.ID, now, sessionEnd); err != nil {
			return nil, nil, err
		}
		inv.LinkOpenedAt = &now
		inv.SessionExpiresAt = &sessionEnd
		logger.Info("registration session started", "invitation_id", inv.ID)
	} else if !inv.SessionActive(now) {
		return nil, nil, fmt.Errorf("%w: registration session has lapsed", domain.ErrExpired)
	}

	remaining := inv.Remaining(now, fullSession)
	return inv, &remaining, nil
}

// Validate is the read-only companion to OpenLink: it reports validity and
// remaining time without starting the registration session.
func (s *invitationService) Validate(ctx context.Context, urlToken string) (*domain.Invitation, *domain.TimeRemaining, error) {
	inv, err := s.invitations.GetByURLToken(ctx, urlToken)
	if err != nil {
		return nil, nil, err
	}

	now := s.now().UTC()
	if !inv.LinkValid(now) {
		return nil, nil, fmt.Errorf("%w: invitation link has expired", domain.ErrExpired)
	}
	if inv.LinkOpenedAt != nil && !inv.SessionActive(now) {
		return nil, nil, fmt.Errorf("%w: registration session has lapsed", domain.ErrExpired)
	}
	if inv.IsUsed {
		return nil, nil, fmt.Errorf("%w: invitation already redeemed", domain.ErrAlreadyUsed)
	}

	remaining := inv.Remaining(now, time.Duration(s.cfg.SessionHours)*time.Hour)
	return inv, &remaining, nil
}
