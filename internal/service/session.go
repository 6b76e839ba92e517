package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/whytehoux-projecty/MIS/internal/domain"
	"github.com/whytehoux-projecty/MIS/internal/logger"
	"github.com/whytehoux-projecty/MIS/internal/repository"
	"github.com/whytehoux-projecty/MIS/internal/security"
)

type sessionService struct {
	tokens security.TokenManager
	logins repository.LoginRepository
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionService(tokens security.TokenManager, logins repository.LoginRepository, ttl time.Duration) SessionService {
	return &sessionService{
		tokens: tokens,
		logins: logins,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *sessionService) Mint(ctx context.Context, member *domain.Member, serviceID int64) (*domain.AuthSession, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)

	token, err := s.tokens.GenerateSessionToken(member.ID, member.Username, member.Email, serviceID, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("mint session token: %w", err)
	}

	rec := &domain.LoginRecord{
		UserID:           member.ID,
		ServiceID:        serviceID,
		SessionToken:     token,
		LoginAt:          now,
		SessionExpiresAt: expiresAt,
	}
	if err := s.logins.Record(ctx, rec); err != nil {
		return nil, err
	}

	logger.Audit(logger.AuditSessionCreated, true, "member_id", member.ID, "service_id", serviceID)
	return &domain.AuthSession{
		Token: token,
		User: domain.UserInfo{
			UserID:   member.ID,
			Username: member.Username,
			FullName: member.FullName,
			Email:    member.Email,
		},
		ExpiresAt: expiresAt,
	}, nil
}

func (s *sessionService) Validate(ctx context.Context, token string) (*domain.UserInfo, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		if errors.Is(err, security.ErrExpiredToken) {
			return nil, fmt.Errorf("%w: session token", domain.ErrExpired)
		}
		return nil, fmt.Errorf("%w: session token", domain.ErrInvalidCredential)
	}
	return &domain.UserInfo{
		UserID:   claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
	}, nil
}

func (s *sessionService) Revoke(ctx context.Context, token string) error {
	if err := s.logins.Revoke(ctx, token, s.now().UTC()); err != nil {
		return err
	}
	logger.Audit(logger.AuditLogout, true)
	return nil
}
