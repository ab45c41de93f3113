// Package server assembles the HTTP API: routes, middleware chain and the
// http.Server that serves them.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/blogauth/internal/auth"
	"github.com/iudanet/blogauth/internal/posts"
	"github.com/iudanet/blogauth/internal/server/handlers"
	"github.com/iudanet/blogauth/internal/server/middleware"
	"github.com/iudanet/blogauth/internal/server/storage/sqlite"
)

const healthPath = "/api/health"

// Deps are the services the API is built from
type Deps struct {
	Logger  *slog.Logger
	Store   *sqlite.Storage
	Auth    *auth.Service
	OAuth   *auth.GoogleOAuth
	Posts   *posts.Service
	Cookies handlers.CookieConfig
	BaseURL string
	Version string
}

// NewRouter returns the API handler with every route and the shared
// middleware chain applied.
func NewRouter(d Deps) http.Handler {
	authHandler := handlers.NewAuthHandler(d.Logger, d.Auth, d.Cookies)
	oauthHandler := handlers.NewOAuthHandler(d.Logger, d.OAuth, d.Auth, d.Cookies, d.BaseURL)
	usersHandler := handlers.NewUsersHandler(d.Logger, d.Store)
	postsHandler := handlers.NewPostsHandler(d.Logger, d.Posts)
	healthHandler := handlers.NewHealthHandler(d.Logger, d.Store, d.Version)

	requireAuth := middleware.RequireAuth(d.Logger)
	requireAdmin := middleware.RequireAdmin(d.Logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET "+healthPath, healthHandler.Health)

	mux.HandleFunc("POST /api/login", authHandler.Login)
	mux.HandleFunc("POST /api/logout", authHandler.Logout)
	mux.Handle("GET /api/me", requireAuth(http.HandlerFunc(authHandler.Me)))
	mux.Handle("GET /api/users", requireAdmin(http.HandlerFunc(usersHandler.List)))

	mux.HandleFunc("GET /api/auth/google", oauthHandler.Start)
	mux.HandleFunc("GET "+handlers.CallbackPath, oauthHandler.Callback)

	mux.Handle("GET /api/posts", requireAuth(http.HandlerFunc(postsHandler.List)))
	mux.Handle("POST /api/posts", requireAuth(http.HandlerFunc(postsHandler.Create)))
	mux.Handle("GET /api/posts/{id}", requireAuth(http.HandlerFunc(postsHandler.Get)))
	mux.Handle("PUT /api/posts/{id}", requireAuth(http.HandlerFunc(postsHandler.Update)))
	mux.Handle("DELETE /api/posts/{id}", requireAuth(http.HandlerFunc(postsHandler.Delete)))

	mux.HandleFunc("GET /api/public/posts", postsHandler.PublicList)
	mux.HandleFunc("GET /api/public/posts/{slug}", postsHandler.PublicGet)

	// wrapped inside out; RequestID runs first
	var h http.Handler = mux
	h = middleware.SessionMiddleware(d.Logger, d.Auth)(h)
	h = middleware.LoggingWithSkip(d.Logger, []string{healthPath})(h)
	h = middleware.RecoveryMiddleware(d.Logger)(h)
	h = middleware.RequestID(h)
	return h
}

// NewHTTPServer wraps handler in an http.Server with conservative timeouts
func NewHTTPServer(addr string, handler http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
}
