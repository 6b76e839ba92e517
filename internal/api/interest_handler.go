package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/whytehoux-projecty/MIS/internal/domain"
	"github.com/whytehoux-projecty/MIS/internal/service"
)

type InterestHandler struct {
	interests service.InterestService
}

func NewInterestHandler(interests service.InterestService) *InterestHandler {
	return &InterestHandler{interests: interests}
}

type submitInterestRequest struct {
	GivenName  string `json:"given_name"`
	MiddleName string `json:"middle_name"`
	FamilyName string `json:"family_name"`
	Alias      string `json:"alias"`

	Gender        string `json:"gender"`
	MaritalStatus string `json:"marital_status"`

	PrimaryEmail string `json:"primary_email"`
	PrimaryPhone string `json:"primary_phone"`

	HasReferral      bool   `json:"has_referral"`
	ReferralMemberID string `json:"referral_member_id"`

	FacePhotoID         string `json:"face_photo_id"`
	GovernmentIDType    string `json:"government_id_type"`
	GovernmentIDPhotoID string `json:"government_id_photo_id"`
}

func (h *InterestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var body submitInterestRequest
	if !decodeBody(w, r, &body) {
		return
	}

	req := &domain.InterestRequest{
		GivenName:           body.GivenName,
		MiddleName:          body.MiddleName,
		FamilyName:          body.FamilyName,
		Alias:               body.Alias,
		Gender:              domain.Gender(body.Gender),
		MaritalStatus:       domain.MaritalStatus(body.MaritalStatus),
		PrimaryEmail:        body.PrimaryEmail,
		PrimaryPhone:        body.PrimaryPhone,
		HasReferral:         body.HasReferral,
		ReferralMemberID:    body.ReferralMemberID,
		FacePhotoID:         body.FacePhotoID,
		GovernmentIDType:    body.GovernmentIDType,
		GovernmentIDPhotoID: body.GovernmentIDPhotoID,
	}

	created, err := h.interests.Submit(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":     created.ID,
		"status": created.Status,
	})
}

// Status is a public self-service lookup; it exposes only the status, never
// the review annotations.
func (h *InterestHandler) Status(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	req, err := h.interests.GetStatusByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "no application found for this email")
			return
		}
		writeDomainError(w, err)
		return
	}
	resp := map[string]any{
		"status":       req.Status,
		"submitted_at": req.CreatedAt,
	}
	if req.Status == domain.InterestStatusInfoRequested {
		resp["info_request_message"] = req.InfoRequestMessage
	}
	writeJSON(w, http.StatusOK, resp)
}

type respondInfoRequest struct {
	Response string `json:"response"`
}

func (h *InterestHandler) RespondInfo(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request id")
		return
	}
	var body respondInfoRequest
	if !decodeBody(w, r, &body) {
		return
	}

	req, err := h.interests.RespondInfo(r.Context(), id, body.Response)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": req.ID, "status": req.Status})
}
