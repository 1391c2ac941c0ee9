package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"clubhub-backend/application/services"
	"clubhub-backend/domain/core/entities"
	"clubhub-backend/pkg/common"
	pkgerrors "clubhub-backend/pkg/errors"
)

// UserHandler serves the caller's own profile and memberships
type UserHandler struct {
	users       *services.UserService
	memberships *services.MembershipService
	errors      *pkgerrors.ErrorHandler
	logger      *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *services.UserService, memberships *services.MembershipService, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, memberships: memberships, errors: errs, logger: logger}
}

// GetMe handles GET /me. The profile is created on first access.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetProfile(r.Context(), common.IdentityFromContext(r.Context()))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, r, http.StatusOK, user)
}

// UpdateMe handles PATCH /me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), common.IdentityFromContext(r.Context()), req.toInput())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, r, http.StatusOK, user)
}

// ListMyMemberships handles GET /me/memberships
func (h *UserHandler) ListMyMemberships(w http.ResponseWriter, r *http.Request) {
	status := entities.MembershipStatus(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		h.errors.Handle(w, r, pkgerrors.NewFieldError("status", "status must be one of: pending active suspended removed"))
		return
	}
	items, err := h.memberships.ListMyMemberships(r.Context(), common.IdentityFromContext(r.Context()), status)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if items == nil {
		items = []entities.Membership{}
	}
	common.RespondJSON(w, r, http.StatusOK, items)
}
