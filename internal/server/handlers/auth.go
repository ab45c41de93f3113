package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/blogauth/internal/auth"
	"github.com/iudanet/blogauth/internal/models"
	"github.com/iudanet/blogauth/pkg/api"
)

// Authenticator is the part of auth.Service the login endpoints use
type Authenticator interface {
	AuthenticateLocal(ctx context.Context, username, password string) (*models.User, error)
	CreateSession(ctx context.Context, userID int64) (string, time.Time, error)
	RevokeSession(ctx context.Context, token string) error
}

// AuthHandler handles local login, logout and identity requests
type AuthHandler struct {
	logger  *slog.Logger
	auth    Authenticator
	cookies CookieConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(logger *slog.Logger, authenticator Authenticator, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{
		logger:  logger,
		auth:    authenticator,
		cookies: cookies,
	}
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		SendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := api.Validate(req); err != nil {
		SendError(h.logger, w, "Username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.auth.AuthenticateLocal(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.WarnContext(ctx, "login failed", slog.String("username", req.Username))
			SendError(h.logger, w, "Invalid username or password", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to authenticate user", slog.Any("error", err))
		SendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	token, _, err := h.auth.CreateSession(ctx, user.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create session", slog.Any("error", err))
		SendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.cookies.SetSession(w, token)

	h.logger.InfoContext(ctx, "user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username))

	sendJSON(h.logger, w, api.LoginResponse{Success: true, User: toAPIUser(user)}, http.StatusOK)
}

// Logout handles POST /api/logout. It succeeds without a session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if token := SessionToken(r); token != "" {
		if err := h.auth.RevokeSession(ctx, token); err != nil {
			h.logger.ErrorContext(ctx, "failed to revoke session", slog.Any("error", err))
			SendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}
	}

	h.cookies.ClearSession(w)

	sendJSON(h.logger, w, api.SuccessResponse{Success: true}, http.StatusOK)
}

// Me handles GET /api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUser(r.Context())
	if user == nil {
		SendError(h.logger, w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sendJSON(h.logger, w, api.MeResponse{User: toAPIUser(user)}, http.StatusOK)
}

func toAPIUser(u *models.User) api.User {
	pub := u.Public()
	return api.User{
		ID:       pub.ID,
		Username: pub.Username,
		Email:    pub.Email,
		Role:     string(pub.Role),
	}
}
