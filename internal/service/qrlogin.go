package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"

	"github.com/whytehoux-projecty/MIS/internal/config"
	"github.com/whytehoux-projecty/MIS/internal/domain"
	"github.com/whytehoux-projecty/MIS/internal/logger"
	"github.com/whytehoux-projecty/MIS/internal/repository"
	"github.com/whytehoux-projecty/MIS/internal/security"
)

type qrLoginService struct {
	qrSessions repository.QRSessionRepository
	members    repository.MemberRepository
	services   repository.RegisteredServiceRepository
	sessions   SessionService
	cfg        config.QRConfig
	now        func() time.Time
}

func NewQRLoginService(
	qrSessions repository.QRSessionRepository,
	members repository.MemberRepository,
	services repository.RegisteredServiceRepository,
	sessions SessionService,
	cfg config.QRConfig,
) QRLoginService {
	return &qrLoginService{
		qrSessions: qrSessions,
		members:    members,
		services:   services,
		sessions:   sessions,
		cfg:        cfg,
		now:        time.Now,
	}
}

// qrPayload is what the QR image encodes. The pattern has half its positions
// masked; only a device that actually scanned the image can echo it back.
type qrPayload struct {
	Token   string `json:"token"`
	Pattern string `json:"pattern"`
}

func (s *qrLoginService) GenerateQR(ctx context.Context, serviceID int64, serviceKey string) (*QRChallenge, error) {
	svc, err := s.services.GetByIDAndKey(ctx, serviceID, serviceKey)
	if err != nil {
		logger.Audit(logger.AuditQRGenerated, false, "service_id", serviceID, "reason", "bad service credential")
		return nil, err
	}

	now := s.now().UTC()
	code := security.GenerateSessionCode()
	hidden := security.GenerateHiddenIndices()
	pattern := security.ObfuscatePattern(code, hidden)

	sess := &domain.QRSession{
		Token:         uuid.NewString(),
		ServiceID:     svc.ID,
		SessionCode:   code,
		QRCodePattern: pattern,
		HiddenIndices: hidden,
		Status:        domain.QRStatusIssued,
		ExpiresAt:     now.Add(time.Duration(s.cfg.ExpirySeconds) * time.Second),
		CreatedAt:     now,
	}
	if err := s.qrSessions.Create(ctx, sess); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(qrPayload{Token: sess.Token, Pattern: pattern})
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr image: %w", err)
	}

	logger.Audit(logger.AuditQRGenerated, true, "service_id", svc.ID, "token", sess.Token)
	return &QRChallenge{
		Token:            sess.Token,
		QRImagePNG:       base64.StdEncoding.EncodeToString(png),
		ExpiresAt:        sess.ExpiresAt,
		ExpiresInSeconds: int64(sess.ExpiresAt.Sub(now).Seconds()),
	}, nil
}

// ScanQR is called by the member's already-authenticated device. A valid scan
// binds the member to the session and mints a short-lived PIN.
func (s *qrLoginService) ScanQR(ctx context.Context, token, scannedPattern, authKey string) (*PinGrant, error) {
	member, err := s.authenticateMember(ctx, authKey)
	if err != nil {
		logger.Audit(logger.AuditQRScanned, false, "token", token, "reason", "bad auth key")
		return nil, err
	}

	sess, err := s.qrSessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if sess.Expired(now) {
		return nil, fmt.Errorf("%w: qr session has expired", domain.ErrExpired)
	}
	if sess.IsUsed {
		return nil, fmt.Errorf("%w: qr session already scanned", domain.ErrAlreadyUsed)
	}
	if !security.ValidateScannedPattern(scannedPattern, sess.SessionCode, sess.HiddenIndices) {
		logger.Audit(logger.AuditQRScanned, false, "token", token, "member_id", member.ID, "reason", "pattern mismatch")
		return nil, fmt.Errorf("%w: scanned pattern does not match", domain.ErrInvalidCredential)
	}

	pin := security.GeneratePin(6)
	pinExpires := now.Add(time.Duration(s.cfg.PinWindowSeconds) * time.Second)
	if err := s.qrSessions.MarkScanned(ctx, sess.ID, member.AuthKeyFingerprint, pin, pinExpires, now); err != nil {
		return nil, err
	}

	logger.Audit(logger.AuditQRScanned, true, "token", token, "member_id", member.ID)
	return &PinGrant{Pin: pin, PinExpiresAt: pinExpires}, nil
}

// VerifyPin is called by the relying service with the PIN the user typed.
// Repeated failures lock the session; success consumes it and mints the
// login session.
func (s *qrLoginService) VerifyPin(ctx context.Context, token, pin string) (*domain.AuthSession, error) {
	sess, err := s.qrSessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()

	if sess.LockedOut(now) {
		logger.Audit(logger.AuditPinFailed, false, "token", token, "reason", "locked out")
		return nil, fmt.Errorf("%w: too many failed attempts, try again later", domain.ErrLockedOut)
	}
	// Expiry first: a lapsed token reports Expired whether or not it was ever
	// scanned or consumed.
	if sess.Expired(now) {
		return nil, fmt.Errorf("%w: qr session has expired", domain.ErrExpired)
	}
	if sess.IsVerified {
		return nil, fmt.Errorf("%w: qr session already consumed", domain.ErrAlreadyUsed)
	}
	if sess.Pin == "" {
		return nil, fmt.Errorf("%w: qr code has not been scanned yet", domain.ErrValidation)
	}
	if sess.PinExpired(now) {
		return nil, fmt.Errorf("%w: pin window has closed", domain.ErrExpired)
	}

	if !security.ConstantTimeEquals(pin, sess.Pin) {
		attempts := sess.FailedAttempts + 1
		var lockout *time.Time
		if attempts >= s.cfg.MaxPinAttempts {
			until := now.Add(time.Duration(s.cfg.LockoutMinutes) * time.Minute)
			lockout = &until
			logger.Audit(logger.AuditLockout, false, "token", token, "attempts", attempts)
		}
		if err := s.qrSessions.RecordFailedAttempt(ctx, sess.ID, attempts, lockout); err != nil {
			return nil, err
		}
		logger.Audit(logger.AuditPinFailed, false, "token", token, "attempts", attempts)
		return nil, fmt.Errorf("%w: incorrect pin", domain.ErrInvalidCredential)
	}

	// CAS on is_verified so two services submitting the right PIN mint one
	// session.
	if err := s.qrSessions.Consume(ctx, sess.ID, now); err != nil {
		return nil, err
	}

	member, err := s.members.GetByAuthFingerprint(ctx, sess.MemberAuthFingerprint)
	if err != nil {
		return nil, err
	}

	authSession, err := s.sessions.Mint(ctx, member, sess.ServiceID)
	if err != nil {
		return nil, err
	}
	if err := s.members.UpdateLastLogin(ctx, member.ID, now); err != nil {
		logger.Error("failed to record last login", "member_id", member.ID, "error", err)
	}

	logger.Audit(logger.AuditPinVerified, true, "token", token, "member_id", member.ID, "service_id", sess.ServiceID)
	return authSession, nil
}

// authenticateMember resolves an auth key to its member. The fingerprint
// lookup narrows to one row; the bcrypt comparison is still the authority.
func (s *qrLoginService) authenticateMember(ctx context.Context, authKey string) (*domain.Member, error) {
	if len(authKey) != security.AuthKeyLength {
		return nil, fmt.Errorf("%w: malformed auth key", domain.ErrInvalidCredential)
	}
	member, err := s.members.GetByAuthFingerprint(ctx, security.Fingerprint(authKey))
	if err != nil {
		return nil, fmt.Errorf("%w: unknown auth key", domain.ErrInvalidCredential)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.AuthKeyHash), []byte(authKey)); err != nil {
		return nil, fmt.Errorf("%w: auth key mismatch", domain.ErrInvalidCredential)
	}
	return member, nil
}
