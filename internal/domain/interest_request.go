package domain

import (
	"fmt"
	"time"
)

type InterestStatus string

const (
	InterestStatusPending              InterestStatus = "PENDING"
	InterestStatusApproved             InterestStatus = "APPROVED"
	InterestStatusInvited              InterestStatus = "INVITED"
	InterestStatusRegistrationStarted  InterestStatus = "REGISTRATION_STARTED"
	InterestStatusRegistrationComplete InterestStatus = "REGISTRATION_COMPLETE"
	InterestStatusActivated            InterestStatus = "ACTIVATED"
	InterestStatusRejected             InterestStatus = "REJECTED"
	InterestStatusInfoRequested        InterestStatus = "INFO_REQUESTED"
	InterestStatusExpired              InterestStatus = "EXPIRED"
)

// AllInterestStatuses is used for stats reporting and input validation.
var AllInterestStatuses = []InterestStatus{
	InterestStatusPending,
	InterestStatusApproved,
	InterestStatusInvited,
	InterestStatusRegistrationStarted,
	InterestStatusRegistrationComplete,
	InterestStatusActivated,
	InterestStatusRejected,
	InterestStatusInfoRequested,
	InterestStatusExpired,
}

// IsTerminal reports whether no further transitions are allowed. Terminal
// requests are retained for audit, never deleted.
func (s InterestStatus) IsTerminal() bool {
	switch s {
	case InterestStatusRejected, InterestStatusExpired, InterestStatusActivated:
		return true
	}
	return false
}

type InterestAction string

const (
	ActionApprove              InterestAction = "approve"
	ActionReject               InterestAction = "reject"
	ActionRequestInfo          InterestAction = "request_info"
	ActionRespondInfo          InterestAction = "respond_info"
	ActionMarkInvited          InterestAction = "mark_invited"
	ActionStartRegistration    InterestAction = "start_registration"
	ActionCompleteRegistration InterestAction = "complete_registration"
	ActionActivate             InterestAction = "activate"
	ActionExpire               InterestAction = "expire"
)

// transitions is the closed edge table of the applicant state machine.
// Every transition call consults it; nothing mutates status any other way.
var transitions = map[InterestStatus]map[InterestAction]InterestStatus{
	InterestStatusPending: {
		ActionApprove:     InterestStatusApproved,
		ActionReject:      InterestStatusRejected,
		ActionRequestInfo: InterestStatusInfoRequested,
		ActionExpire:      InterestStatusExpired,
	},
	InterestStatusInfoRequested: {
		ActionRespondInfo: InterestStatusPending,
		ActionExpire:      InterestStatusExpired,
	},
	InterestStatusApproved: {
		ActionMarkInvited: InterestStatusInvited,
		ActionExpire:      InterestStatusExpired,
	},
	InterestStatusInvited: {
		ActionStartRegistration: InterestStatusRegistrationStarted,
		ActionExpire:            InterestStatusExpired,
	},
	InterestStatusRegistrationStarted: {
		ActionCompleteRegistration: InterestStatusRegistrationComplete,
		ActionExpire:               InterestStatusExpired,
	},
	InterestStatusRegistrationComplete: {
		ActionActivate: InterestStatusActivated,
		ActionExpire:   InterestStatusExpired,
	},
}

// NextStatus resolves the target status for an action from the given status.
// Returns ErrInvalidTransition when the edge does not exist.
func NextStatus(current InterestStatus, action InterestAction) (InterestStatus, error) {
	edges, ok := transitions[current]
	if !ok {
		return "", fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, current)
	}
	next, ok := edges[action]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, action, current)
	}
	return next, nil
}

type RequestSource string

const (
	SourceExternalSpace RequestSource = "external_space"
	SourceAdminDirect   RequestSource = "admin_direct"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type MaritalStatus string

const (
	MaritalMarried              MaritalStatus = "married"
	MaritalSingleNoRelationship MaritalStatus = "single_no_relationship"
	MaritalSingleInRelationship MaritalStatus = "single_in_relationship"
)

// InterestRequest is an applicant's submission awaiting admin disposition.
// Photo references are opaque identifiers handed back by the file-upload
// collaborator; the core never inspects file contents.
type InterestRequest struct {
	ID int64 `json:"id"`

	GivenName  string `json:"given_name"`
	MiddleName string `json:"middle_name,omitempty"`
	FamilyName string `json:"family_name"`
	Alias      string `json:"alias,omitempty"`

	Gender        Gender        `json:"gender"`
	MaritalStatus MaritalStatus `json:"marital_status"`

	PrimaryEmail string `json:"primary_email"`
	PrimaryPhone string `json:"primary_phone"`

	HasReferral      bool   `json:"has_referral"`
	ReferralMemberID string `json:"referral_member_id,omitempty"`

	FacePhotoID         string `json:"face_photo_id,omitempty"`
	GovernmentIDType    string `json:"government_id_type,omitempty"`
	GovernmentIDPhotoID string `json:"government_id_photo_id,omitempty"`

	Source RequestSource  `json:"source"`
	Status InterestStatus `json:"status"`

	ReviewedBy         string     `json:"reviewed_by,omitempty"`
	ReviewedAt         *time.Time `json:"reviewed_at,omitempty"`
	AdminNotes         string     `json:"admin_notes,omitempty"`
	RejectionReason    string     `json:"rejection_reason,omitempty"`
	InfoRequestMessage string     `json:"info_request_message,omitempty"`
	InfoResponse       string     `json:"info_response,omitempty"`

	InvitationID *int64 `json:"invitation_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *InterestRequest) FullName() string {
	name := r.GivenName
	if r.MiddleName != "" {
		name += " " + r.MiddleName
	}
	return name + " " + r.FamilyName
}

// DisplayName is what applicant-facing emails address the person by.
func (r *InterestRequest) DisplayName() string {
	if r.Alias != "" {
		return r.Alias
	}
	return r.GivenName
}

// ReviewStamp carries the admin annotations persisted together with a
// transition, so the audit fields and the status change land atomically.
type ReviewStamp struct {
	ReviewedBy         string
	ReviewedAt         time.Time
	AdminNotes         string
	RejectionReason    string
	InfoRequestMessage string
	InfoResponse       string
	InvitationID       *int64
}
