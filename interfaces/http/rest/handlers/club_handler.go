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

// ClubHandler handles club HTTP requests
type ClubHandler struct {
	clubs  *services.ClubService
	users  *services.UserService
	errors *pkgerrors.ErrorHandler
	logger *zap.Logger
}

// NewClubHandler creates a new club handler
func NewClubHandler(clubs *services.ClubService, users *services.UserService, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *ClubHandler {
	return &ClubHandler{clubs: clubs, users: users, errors: errs, logger: logger}
}

// ListClubs handles GET /clubs
func (h *ClubHandler) ListClubs(w http.ResponseWriter, r *http.Request) {
	opts := ports.ListClubsOptions{
		PageRequest: common.ExtractPageRequest(r),
		Status:      entities.ClubStatus(r.URL.Query().Get("status")),
	}
	page, err := h.clubs.ListClubs(r.Context(), common.IdentityFromContext(r.Context()), opts)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, r, http.StatusOK, page)
}

// CreateClub handles POST /clubs
func (h *ClubHandler) CreateClub(w http.ResponseWriter, r *http.Request) {
	var req CreateClubRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	identity := common.IdentityFromContext(r.Context())
	// The owner's profile backs member listings.
	if _, err := h.users.EnsureUser(r.Context(), identity); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	club, err := h.clubs.CreateClub(r.Context(), identity, req.toInput())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, r, http.StatusCreated, club)
}

// GetClub handles GET /clubs/{clubID}
func (h *ClubHandler) GetClub(w http.ResponseWriter, r *http.Request) {
	club, err := h.clubs.GetClub(r.Context(), common.IdentityFromContext(r.Context()), chi.URLParam(r, "clubID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, r, http.StatusOK, club)
}

// UpdateClub handles PATCH /clubs/{clubID}
func (h *ClubHandler) UpdateClub(w http.ResponseWriter, r *http.Request) {
	var req UpdateClubRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	club, err := h.clubs.UpdateClub(r.Context(), common.IdentityFromContext(r.Context()), chi.URLParam(r, "clubID"), req.toInput())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, r, http.StatusOK, club)
}
