package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/iudanet/blogauth/internal/auth"
	"github.com/iudanet/blogauth/internal/models"
)

const (
	// CallbackPath is where the provider redirects back to
	CallbackPath = "/api/auth/google/callback"

	loginPagePath = "/admin/login"
	adminPagePath = "/admin"
)

// OAuthFlow is the provider flow driven by the OAuth endpoints
type OAuthFlow interface {
	Begin(redirectURI string) (string, string, error)
	Complete(ctx context.Context, p auth.CallbackParams) (*models.User, error)
}

// SessionCreator opens sessions
type SessionCreator interface {
	CreateSession(ctx context.Context, userID int64) (string, time.Time, error)
}

// OAuthHandler handles the Google sign-in redirect and callback
type OAuthHandler struct {
	logger   *slog.Logger
	flow     OAuthFlow
	sessions SessionCreator
	baseURL  string
	cookies  CookieConfig
}

// NewOAuthHandler creates a new OAuth handler. baseURL is the public origin;
// when empty it is derived from each request.
func NewOAuthHandler(logger *slog.Logger, flow OAuthFlow, sessions SessionCreator, cookies CookieConfig, baseURL string) *OAuthHandler {
	return &OAuthHandler{
		logger:   logger,
		flow:     flow,
		sessions: sessions,
		cookies:  cookies,
		baseURL:  baseURL,
	}
}

// Start handles GET /api/auth/google
func (h *OAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	authURL, state, err := h.flow.Begin(h.redirectURI(r))
	if err != nil {
		if errors.Is(err, auth.ErrOAuthNotConfigured) {
			h.logger.ErrorContext(ctx, "google oauth client id not configured")
			SendError(h.logger, w, "Google OAuth not configured", http.StatusInternalServerError)
			return
		}
		h.logger.ErrorContext(ctx, "failed to start oauth flow", slog.Any("error", err))
		SendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.cookies.SetState(w, state)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback handles GET /api/auth/google/callback. Every outcome is a
// redirect; the state cookie is cleared on all of them.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	params := auth.CallbackParams{
		Code:        q.Get("code"),
		State:       q.Get("state"),
		Error:       q.Get("error"),
		StoredState: cookieValue(r, StateCookieName),
		RedirectURI: h.redirectURI(r),
	}

	h.cookies.ClearState(w)

	user, err := h.flow.Complete(ctx, params)
	if err != nil {
		code := auth.FlowErrorCode(err)
		level := slog.LevelWarn
		if code == auth.CodeServerError {
			level = slog.LevelError
		}
		h.logger.Log(ctx, level, "google sign-in failed",
			slog.String("code", code),
			slog.Any("error", err))
		h.failRedirect(w, r, code)
		return
	}

	token, _, err := h.sessions.CreateSession(ctx, user.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create session", slog.Any("error", err))
		h.failRedirect(w, r, auth.CodeServerError)
		return
	}

	h.cookies.SetSession(w, token)

	h.logger.InfoContext(ctx, "user signed in with google",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username))

	http.Redirect(w, r, adminPagePath, http.StatusFound)
}

func (h *OAuthHandler) failRedirect(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, loginPagePath+"?error="+url.QueryEscape(code), http.StatusFound)
}

func (h *OAuthHandler) redirectURI(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL + CallbackPath
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	} else if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		scheme = proto
	}

	return scheme + "://" + r.Host + CallbackPath
}
