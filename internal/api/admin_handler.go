package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/whytehoux-projecty/MIS/internal/domain"
	"github.com/whytehoux-projecty/MIS/internal/service"
)

type AdminHandler struct {
	interests service.InterestService
	approver  service.ApproverService
}

func NewAdminHandler(interests service.InterestService, approver service.ApproverService) *AdminHandler {
	return &AdminHandler{interests: interests, approver: approver}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request id")
		return 0, false
	}
	return id, true
}

type reviewRequest struct {
	Notes   string `json:"notes"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body reviewRequest
	if !decodeBody(w, r, &body) {
		return
	}

	req, inv, err := h.approver.Approve(r.Context(), id, adminName(r), body.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	// The pin serializes nowhere else; the approving admin relays it to the
	// applicant out of band.
	writeJSON(w, http.StatusOK, map[string]any{
		"request":         req,
		"invitation":      inv,
		"invitation_code": inv.Code,
		"pin":             inv.Pin,
	})
}

func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body reviewRequest
	if !decodeBody(w, r, &body) {
		return
	}

	req, err := h.approver.Reject(r.Context(), id, adminName(r), body.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *AdminHandler) RequestInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body reviewRequest
	if !decodeBody(w, r, &body) {
		return
	}

	req, err := h.approver.RequestInfo(r.Context(), id, adminName(r), body.Message)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

type directInviteRequest struct {
	submitInterestRequest
	Notes string `json:"notes"`
}

// Invite creates an applicant directly and runs the full approval path, so
// admin-entered members carry the same audit trail as external applicants.
func (h *AdminHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var body directInviteRequest
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
		AdminNotes:          body.Notes,
	}

	created, inv, err := h.approver.CreateDirect(r.Context(), req, adminName(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"request":         created,
		"invitation":      inv,
		"invitation_code": inv.Code,
		"pin":             inv.Pin,
	})
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := domain.InterestStatus(q.Get("status"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	reqs, err := h.interests.List(r.Context(), status, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"requests": reqs,
		"count":    len(reqs),
	})
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.interests.Stats(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, err := h.interests.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
