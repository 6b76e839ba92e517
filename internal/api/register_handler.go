package api

import (
	"net/http"

	"github.com/whytehoux-projecty/MIS/internal/domain"
	"github.com/whytehoux-projecty/MIS/internal/service"
)

type RegisterHandler struct {
	invitations service.InvitationService
	approver    service.ApproverService
}

func NewRegisterHandler(invitations service.InvitationService, approver service.ApproverService) *RegisterHandler {
	return &RegisterHandler{invitations: invitations, approver: approver}
}

type verifyRequest struct {
	InvitationCode string `json:"invitation_code"`
	Pin            string `json:"pin"`
}

// Verify consumes the invitation after the code+PIN check. All redemption
// failures collapse into one generic answer.
func (h *RegisterHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var body verifyRequest
	if !decodeBody(w, r, &body) {
		return
	}

	inv, err := h.invitations.Redeem(r.Context(), body.InvitationCode, body.Pin)
	if err != nil {
		writeRedemptionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"url_token":          inv.URLToken,
		"session_expires_at": inv.SessionExpiresAt,
	})
}

type urlTokenRequest struct {
	URLToken string `json:"url_token"`
}

func (h *RegisterHandler) OpenLink(w http.ResponseWriter, r *http.Request) {
	var body urlTokenRequest
	if !decodeBody(w, r, &body) {
		return
	}

	inv, remaining, err := h.approver.OpenRegistration(r.Context(), body.URLToken)
	if err != nil {
		writeRedemptionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"intended_for_name":  inv.IntendedForName,
		"link_remaining":     remaining.LinkRemainingSeconds,
		"session_remaining":  remaining.SessionRemainingSeconds,
		"session_expires_at": inv.SessionExpiresAt,
	})
}

type completeRequest struct {
	URLToken       string `json:"url_token"`
	Username       string `json:"username"`
	Gender         string `json:"gender"`
	MaritalStatus  string `json:"marital_status"`
	Profession     string `json:"profession"`
	DateOfBirth    string `json:"date_of_birth"`
	ProfilePhotoID string `json:"profile_photo_id"`
	IDDocumentID   string `json:"id_document_id"`
}

func (h *RegisterHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var body completeRequest
	if !decodeBody(w, r, &body) {
		return
	}

	form := service.RegistrationForm{
		Username:       body.Username,
		Gender:         domain.Gender(body.Gender),
		MaritalStatus:  domain.MaritalStatus(body.MaritalStatus),
		Profession:     body.Profession,
		DateOfBirth:    body.DateOfBirth,
		ProfilePhotoID: body.ProfilePhotoID,
		IDDocumentID:   body.IDDocumentID,
	}
	req, err := h.approver.CompleteRegistration(r.Context(), body.URLToken, form)
	if err != nil {
		writeRedemptionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": req.Status})
}

// Activate mints the membership credential. The plaintext auth key appears in
// this response and nowhere else, ever.
func (h *RegisterHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var body urlTokenRequest
	if !decodeBody(w, r, &body) {
		return
	}

	member, credential, err := h.approver.FinalizeActivation(r.Context(), body.URLToken)
	if err != nil {
		writeRedemptionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"member":    member,
		"auth_key":  credential.AuthKey,
		"issued_at": credential.IssuedAt,
	})
}
