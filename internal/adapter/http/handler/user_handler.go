package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/minibank/internal/adapter/http/dto"
	"github.com/iho/minibank/internal/domain"
	"github.com/iho/minibank/internal/usecase"
)

// UserService defines the behavior needed by UserHandler.
type UserService interface {
	GetUser(ctx context.Context, principal domain.Principal, id string) (*domain.User, error)
	ListUsers(ctx context.Context, principal domain.Principal, limit, offset int) ([]*domain.User, error)
	UpdateProfile(ctx context.Context, principal domain.Principal, input usecase.UpdateProfileInput) (*domain.User, error)
	Deactivate(ctx context.Context, principal domain.Principal) error
	BootstrapAdmin(ctx context.Context, principal domain.Principal) (*domain.User, error)
	PromoteUser(ctx context.Context, principal domain.Principal, targetID string) (*domain.User, error)
}

// UserHandler handles user administration requests.
type UserHandler struct {
	userUC UserService
	tokens TokenIssuer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userUC UserService, tokens TokenIssuer) *UserHandler {
	return &UserHandler{userUC: userUC, tokens: tokens}
}

// Get retrieves a user by ID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	user, err := h.userUC.GetUser(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}

// List lists users. Admin only.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	limit, offset := pagination(r)
	users, err := h.userUC.ListUsers(r.Context(), principal, limit, offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListUsersResponse{
		Users:  dto.UsersFromDomain(users),
		Limit:  limit,
		Offset: offset,
	})
}

// UpdateMe updates the caller's names and password.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userUC.UpdateProfile(r.Context(), principal, req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}

// DeleteMe deactivates the caller.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	if err := h.userUC.Deactivate(r.Context(), principal); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BootstrapAdmin promotes the caller while the system has no admin and returns
// a fresh token carrying the admin role.
func (h *UserHandler) BootstrapAdmin(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	user, err := h.userUC.BootstrapAdmin(r.Context(), principal)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeToken(w, r, h.tokens, user)
}

// Promote grants the admin role to another user. The promoted user's existing
// tokens keep the old role until they log in again.
func (h *UserHandler) Promote(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	user, err := h.userUC.PromoteUser(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PromotionResponse{
		User:                 dto.UserFromDomain(user),
		TokenRefreshRequired: true,
		Message:              "user must request a new token to use admin routes",
	})
}
