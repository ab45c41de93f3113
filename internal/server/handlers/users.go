package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iudanet/blogauth/internal/authz"
	"github.com/iudanet/blogauth/internal/models"
	"github.com/iudanet/blogauth/pkg/api"
)

// UserLister lists accounts
type UserLister interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// UsersHandler serves the admin account listing
type UsersHandler struct {
	logger *slog.Logger
	users  UserLister
}

// NewUsersHandler creates a new users handler
func NewUsersHandler(logger *slog.Logger, users UserLister) *UsersHandler {
	return &UsersHandler{
		logger: logger,
		users:  users,
	}
}

// List handles GET /api/users
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user := GetUser(ctx)
	if user == nil {
		SendError(h.logger, w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !authz.CanViewAll(user) {
		h.logger.WarnContext(ctx, "user list forbidden", slog.Int64("user_id", user.ID))
		SendError(h.logger, w, "Forbidden", http.StatusForbidden)
		return
	}

	users, err := h.users.ListUsers(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list users", slog.Any("error", err))
		SendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.UsersResponse{Users: make([]api.User, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, toAPIUser(u))
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}
