package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/whytehoux-projecty/MIS/internal/domain"
)

type MockInterestRepo struct {
	mock.Mock
}

func (m *MockInterestRepo) Create(ctx context.Context, req *domain.InterestRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockInterestRepo) GetByID(ctx context.Context, id int64) (*domain.InterestRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InterestRequest), args.Error(1)
}

func (m *MockInterestRepo) GetByEmail(ctx context.Context, email string) (*domain.InterestRequest, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InterestRequest), args.Error(1)
}

func (m *MockInterestRepo) TransitionStatus(ctx context.Context, id int64, from, to domain.InterestStatus, stamp *domain.ReviewStamp) error {
	args := m.Called(ctx, id, from, to, stamp)
	return args.Error(0)
}

func (m *MockInterestRepo) List(ctx context.Context, status domain.InterestStatus, limit, offset int32) ([]domain.InterestRequest, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InterestRequest), args.Error(1)
}

func (m *MockInterestRepo) CountByStatus(ctx context.Context) (map[domain.InterestStatus]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.InterestStatus]int), args.Error(1)
}

func (m *MockInterestRepo) ExpireWithLapsedInvitations(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInterestRepo) ExpireInfoRequestedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockInvitationRepo struct {
	mock.Mock
}

func (m *MockInvitationRepo) Create(ctx context.Context, inv *domain.Invitation) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvitationRepo) GetByCode(ctx context.Context, code string) (*domain.Invitation, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invitation), args.Error(1)
}

func (m *MockInvitationRepo) GetByURLToken(ctx context.Context, urlToken string) (*domain.Invitation, error) {
	args := m.Called(ctx, urlToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invitation), args.Error(1)
}

func (m *MockInvitationRepo) GetActiveByEmail(ctx context.Context, email string, now time.Time) (*domain.Invitation, error) {
	args := m.Called(ctx, email, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invitation), args.Error(1)
}

func (m *MockInvitationRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvitationRepo) URLTokenExists(ctx context.Context, urlToken string) (bool, error) {
	args := m.Called(ctx, urlToken)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvitationRepo) StartSession(ctx context.Context, id int64, openedAt, sessionExpiresAt time.Time) error {
	args := m.Called(ctx, id, openedAt, sessionExpiresAt)
	return args.Error(0)
}

func (m *MockInvitationRepo) MarkUsed(ctx context.Context, id int64, usedBy string, usedAt, sessionExpiresAt time.Time) error {
	args := m.Called(ctx, id, usedBy, usedAt, sessionExpiresAt)
	return args.Error(0)
}

type MockQRSessionRepo struct {
	mock.Mock
}

func (m *MockQRSessionRepo) Create(ctx context.Context, sess *domain.QRSession) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *MockQRSessionRepo) GetByToken(ctx context.Context, token string) (*domain.QRSession, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QRSession), args.Error(1)
}

func (m *MockQRSessionRepo) GetByPattern(ctx context.Context, pattern string) (*domain.QRSession, error) {
	args := m.Called(ctx, pattern)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QRSession), args.Error(1)
}

func (m *MockQRSessionRepo) MarkScanned(ctx context.Context, id int64, memberFingerprint, pin string, pinExpiresAt, scannedAt time.Time) error {
	args := m.Called(ctx, id, memberFingerprint, pin, pinExpiresAt, scannedAt)
	return args.Error(0)
}

func (m *MockQRSessionRepo) Consume(ctx context.Context, id int64, verifiedAt time.Time) error {
	args := m.Called(ctx, id, verifiedAt)
	return args.Error(0)
}

func (m *MockQRSessionRepo) RecordFailedAttempt(ctx context.Context, id int64, attempts int, lockoutUntil *time.Time) error {
	args := m.Called(ctx, id, attempts, lockoutUntil)
	return args.Error(0)
}

func (m *MockQRSessionRepo) ClearLockout(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQRSessionRepo) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockMemberRepo struct {
	mock.Mock
}

func (m *MockMemberRepo) Create(ctx context.Context, member *domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepo) GetByID(ctx context.Context, id int64) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepo) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepo) GetByAuthFingerprint(ctx context.Context, fingerprint string) (*domain.Member, error) {
	args := m.Called(ctx, fingerprint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepo) FingerprintExists(ctx context.Context, fingerprint string) (bool, error) {
	args := m.Called(ctx, fingerprint)
	return args.Bool(0), args.Error(1)
}

func (m *MockMemberRepo) SetCredential(ctx context.Context, id int64, hash, fingerprint string, issuedAt time.Time) error {
	args := m.Called(ctx, id, hash, fingerprint, issuedAt)
	return args.Error(0)
}

func (m *MockMemberRepo) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type MockServiceRepo struct {
	mock.Mock
}

func (m *MockServiceRepo) GetByIDAndKey(ctx context.Context, id int64, apiKey string) (*domain.RegisteredService, error) {
	args := m.Called(ctx, id, apiKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RegisteredService), args.Error(1)
}

type MockLoginRepo struct {
	mock.Mock
}

func (m *MockLoginRepo) Record(ctx context.Context, rec *domain.LoginRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockLoginRepo) Revoke(ctx context.Context, sessionToken string, at time.Time) error {
	args := m.Called(ctx, sessionToken, at)
	return args.Error(0)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendInvitation(ctx context.Context, inv *domain.Invitation, memberName string) error {
	args := m.Called(ctx, inv, memberName)
	return args.Error(0)
}

func (m *MockEmailService) SendRejection(ctx context.Context, email, name, reason string) error {
	args := m.Called(ctx, email, name, reason)
	return args.Error(0)
}

func (m *MockEmailService) SendInfoRequest(ctx context.Context, email, name, message string) error {
	args := m.Called(ctx, email, name, message)
	return args.Error(0)
}
