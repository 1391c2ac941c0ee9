package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"clubhub-backend/application/ports"
	"clubhub-backend/application/services"
	"clubhub-backend/domain/core/entities"
	"clubhub-backend/pkg/common"
	pkgerrors "clubhub-backend/pkg/errors"
)

// MemberHandler handles membership HTTP requests
type MemberHandler struct {
	memberships *services.MembershipService
	users       *services.UserService
	errors      *pkgerrors.ErrorHandler
	logger      *zap.Logger
}

// NewMemberHandler creates a new membership handler
func NewMemberHandler(memberships *services.MembershipService, users *services.UserService, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *MemberHandler {
	return &MemberHandler{memberships: memberships, users: users, errors: errs, logger: logger}
}

// JoinClub handles POST /clubs/{clubID}/join
func (h *MemberHandler) JoinClub(w http.ResponseWriter, r *http.Request) {
	var req JoinClubRequest
	if hasBody(r) {
		if err := common.DecodeJSON(r, &req); err != nil {
			h.errors.Handle(w, r, err)
			return
		}
	}

	identity := common.IdentityFromContext(r.Context())
	if _, err := h.users.EnsureUser(r.Context(), identity); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	m, err := h.memberships.JoinClub(r.Context(), identity, chi.URLParam(r, "clubID"),
		entities.CreateMembershipInput{JoinMessage: req.JoinMessage})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, r, http.StatusCreated, m)
}

// LeaveClub handles POST /clubs/{clubID}/leave
func (h *MemberHandler) LeaveClub(w http.ResponseWriter, r *http.Request) {
	m, err := h.memberships.LeaveClub(r.Context(), common.IdentityFromContext(r.Context()), chi.URLParam(r, "clubID"))
	h.respond(w, r, m, err)
}

// ListMembers handles GET /clubs/{clubID}/members
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := ports.ListMembersOptions{
		PageRequest: common.ExtractPageRequest(r),
		Role:        entities.MembershipRole(q.Get("role")),
		Status:      entities.MembershipStatus(q.Get("status")),
	}
	page, err := h.memberships.ListClubMembers(r.Context(), common.IdentityFromContext(r.Context()), chi.URLParam(r, "clubID"), opts)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, r, http.StatusOK, page)
}

// GetMember handles GET /clubs/{clubID}/members/{userID}
func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	m, err := h.memberships.GetMember(r.Context(), common.IdentityFromContext(r.Context()),
		chi.URLParam(r, "clubID"), chi.URLParam(r, "userID"))
	h.respond(w, r, m, err)
}

// Approve handles POST /clubs/{clubID}/members/{userID}/approve
func (h *MemberHandler) Approve(w http.ResponseWriter, r *http.Request) {
	m, err := h.memberships.ApproveMembership(r.Context(), common.IdentityFromContext(r.Context()),
		chi.URLParam(r, "clubID"), chi.URLParam(r, "userID"))
	h.respond(w, r, m, err)
}

// Reject handles POST /clubs/{clubID}/members/{userID}/reject
func (h *MemberHandler) Reject(w http.ResponseWriter, r *http.Request) {
	req, ok := h.reason(w, r)
	if !ok {
		return
	}
	m, err := h.memberships.RejectMembership(r.Context(), common.IdentityFromContext(r.Context()),
		chi.URLParam(r, "clubID"), chi.URLParam(r, "userID"), req.Reason)
	h.respond(w, r, m, err)
}

// Suspend handles POST /clubs/{clubID}/members/{userID}/suspend
func (h *MemberHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	req, ok := h.reason(w, r)
	if !ok {
		return
	}
	m, err := h.memberships.SuspendMember(r.Context(), common.IdentityFromContext(r.Context()),
		chi.URLParam(r, "clubID"), chi.URLParam(r, "userID"), req.Reason)
	h.respond(w, r, m, err)
}

// Reactivate handles POST /clubs/{clubID}/members/{userID}/reactivate
func (h *MemberHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	m, err := h.memberships.ReactivateMember(r.Context(), common.IdentityFromContext(r.Context()),
		chi.URLParam(r, "clubID"), chi.URLParam(r, "userID"))
	h.respond(w, r, m, err)
}

// Remove handles DELETE /clubs/{clubID}/members/{userID}
func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	m, err := h.memberships.RemoveMember(r.Context(), common.IdentityFromContext(r.Context()),
		chi.URLParam(r, "clubID"), chi.URLParam(r, "userID"), r.URL.Query().Get("reason"))
	h.respond(w, r, m, err)
}

// UpdateStatus handles PATCH /clubs/{clubID}/members/{userID}/status
func (h *MemberHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateMemberStatusRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	m, err := h.memberships.UpdateMemberStatus(r.Context(), common.IdentityFromContext(r.Context()),
		chi.URLParam(r, "clubID"), chi.URLParam(r, "userID"), entities.MembershipStatus(req.Status), req.Reason)
	h.respond(w, r, m, err)
}

// ChangeRole handles PATCH /clubs/{clubID}/members/{userID}/role
func (h *MemberHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var req ChangeRoleRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	m, err := h.memberships.ChangeMemberRole(r.Context(), common.IdentityFromContext(r.Context()),
		chi.URLParam(r, "clubID"), chi.URLParam(r, "userID"), entities.MembershipRole(req.Role))
	h.respond(w, r, m, err)
}

func (h *MemberHandler) reason(w http.ResponseWriter, r *http.Request) (ReasonRequest, bool) {
	var req ReasonRequest
	if !hasBody(r) {
		return req, true
	}
	if err := common.DecodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return req, false
	}
	return req, true
}

func (h *MemberHandler) respond(w http.ResponseWriter, r *http.Request, m *entities.Membership, err error) {
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, r, http.StatusOK, m)
}
