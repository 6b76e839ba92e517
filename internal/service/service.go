package service

import (
	"context"
	"time"

	"github.com/whytehoux-projecty/MIS/internal/domain"
)

type InterestService interface {
	Submit(ctx context.Context, req *domain.InterestRequest) (*domain.InterestRequest, error)
	GetByID(ctx context.Context, id int64) (*domain.InterestRequest, error)
	GetStatusByEmail(ctx context.Context, email string) (*domain.InterestRequest, error)
	RespondInfo(ctx context.Context, id int64, response string) (*domain.InterestRequest, error)
	List(ctx context.Context, status domain.InterestStatus, limit, offset int) ([]domain.InterestRequest, error)
	Stats(ctx context.Context) (map[domain.InterestStatus]int, error)
}

type InvitationService interface {
	Issue(ctx context.Context, email, memberName string, invitedBy string) (*domain.Invitation, error)

	// Redeem accepts either the invitation code or the url token as the
	// identifier.
	Redeem(ctx context.Context, identifier, pin string) (*domain.Invitation, error)
	OpenLink(ctx context.Context, urlToken string) (*domain.Invitation, *domain.TimeRemaining, error)
	Validate(ctx context.Context, urlToken string) (*domain.Invitation, *domain.TimeRemaining, error)
}

type ApproverService interface {
	Approve(ctx context.Context, id int64, adminName, notes string) (*domain.InterestRequest, *domain.Invitation, error)
	Reject(ctx context.Context, id int64, adminName, reason string) (*domain.InterestRequest, error)
	RequestInfo(ctx context.Context, id int64, adminName, message string) (*domain.InterestRequest, error)
	CreateDirect(ctx context.Context, req *domain.InterestRequest, adminName string) (*domain.InterestRequest, *domain.Invitation, error)
	OpenRegistration(ctx context.Context, urlToken string) (*domain.Invitation, *domain.TimeRemaining, error)
	CompleteRegistration(ctx context.Context, urlToken string, form RegistrationForm) (*domain.InterestRequest, error)
	FinalizeActivation(ctx context.Context, urlToken string) (*domain.Member, *domain.MembershipCredential, error)
}

// RegistrationForm carries the fields collected on the registration page.
type RegistrationForm struct {
	Username       string
	Gender         domain.Gender
	MaritalStatus  domain.MaritalStatus
	Profession     string
	DateOfBirth    string
	ProfilePhotoID string
	IDDocumentID   string
}

type QRLoginService interface {
	GenerateQR(ctx context.Context, serviceID int64, serviceKey string) (*QRChallenge, error)
	ScanQR(ctx context.Context, token, scannedPattern, authKey string) (*PinGrant, error)
	VerifyPin(ctx context.Context, token, pin string) (*domain.AuthSession, error)
}

// QRChallenge is what a service displays to the user: the QR image plus the
// token the device posts back after scanning.
type QRChallenge struct {
	Token            string    `json:"qr_token"`
	QRImagePNG       string    `json:"qr_image"` // base64 PNG
	ExpiresAt        time.Time `json:"expires_at"`
	ExpiresInSeconds int64     `json:"expires_in_seconds"`
}

// PinGrant is returned to the scanning device after a valid scan.
type PinGrant struct {
	Pin          string    `json:"pin"`
	PinExpiresAt time.Time `json:"pin_expires_at"`
}

type SessionService interface {
	Mint(ctx context.Context, member *domain.Member, serviceID int64) (*domain.AuthSession, error)
	Validate(ctx context.Context, token string) (*domain.UserInfo, error)
	Revoke(ctx context.Context, token string) error
}

type EmailService interface {
	SendInvitation(ctx context.Context, inv *domain.Invitation, memberName string) error
	SendRejection(ctx context.Context, email, name, reason string) error
	SendInfoRequest(ctx context.Context, email, name, message string) error
}
