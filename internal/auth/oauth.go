package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/iudanet/blogauth/internal/models"
)

// Redirect error codes reported to the login page
const (
	CodeOAuthFailed         = "oauth_failed"
	CodeInvalidRequest      = "invalid_request"
	CodeStateMismatch       = "state_mismatch"
	CodeServerError         = "server_error"
	CodeTokenExchangeFailed = "token_exchange_failed"
	CodeUserInfoFailed      = "userinfo_failed"
)

const (
	// DefaultAuthURL is Google's v2 authorization endpoint
	DefaultAuthURL = "https://accounts.google.com/o/oauth2/v2/auth"
	// DefaultUserInfoURL is Google's OpenID Connect userinfo endpoint
	DefaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

	defaultHTTPTimeout = 10 * time.Second
	maxUserInfoBytes   = 1 << 20
)

// ErrOAuthNotConfigured is returned by Begin when no client id is set
var ErrOAuthNotConfigured = errors.New("google oauth not configured")

// FlowError is a failed OAuth callback. Code is safe to show to the user;
// Err is for logs only.
type FlowError struct {
	Err  error
	Code string
}

func (e *FlowError) Error() string {
	if e.Err == nil {
		return "oauth " + e.Code
	}
	return "oauth " + e.Code + ": " + e.Err.Error()
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

func flowError(code string, err error) *FlowError {
	return &FlowError{Code: code, Err: err}
}

// FlowErrorCode returns the redirect code for err, server_error when err is
// not a FlowError.
func FlowErrorCode(err error) string {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return CodeServerError
}

// OAuthConfig holds client credentials and endpoint overrides.
// Empty URLs fall back to Google's endpoints.
type OAuthConfig struct {
	HTTPClient           *http.Client
	ClientID             string
	ClientSecret         string
	AuthURL              string
	TokenURL             string
	UserInfoURL          string
	RequireVerifiedEmail bool
}

// AccountResolver maps a provider identity to a local account
type AccountResolver interface {
	FindOrCreateGoogleUser(ctx context.Context, profile GoogleProfile) (*models.User, error)
}

// CallbackParams is what the callback request carries
type CallbackParams struct {
	Code        string
	State       string
	Error       string
	StoredState string
	RedirectURI string
}

// GoogleOAuth drives the authorization-code flow against Google
type GoogleOAuth struct {
	logger   *slog.Logger
	accounts AccountResolver
	client   *http.Client
	cfg      OAuthConfig
}

// NewGoogleOAuth creates the flow controller
func NewGoogleOAuth(logger *slog.Logger, cfg OAuthConfig, accounts AccountResolver) *GoogleOAuth {
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = google.Endpoint.TokenURL
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = DefaultUserInfoURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}

	return &GoogleOAuth{
		logger:   logger,
		accounts: accounts,
		client:   client,
		cfg:      cfg,
	}
}

// Configured reports whether both client credentials are present
func (g *GoogleOAuth) Configured() bool {
	return g.cfg.ClientID != "" && g.cfg.ClientSecret != ""
}

func (g *GoogleOAuth) oauth2Config(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     g.cfg.ClientID,
		ClientSecret: g.cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   g.cfg.AuthURL,
			TokenURL:  g.cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Begin returns the provider authorization URL and the fresh state value
// that the caller must store for the callback.
func (g *GoogleOAuth) Begin(redirectURI string) (string, string, error) {
	if g.cfg.ClientID == "" {
		return "", "", ErrOAuthNotConfigured
	}

	state := uuid.NewString()
	return g.oauth2Config(redirectURI).AuthCodeURL(state), state, nil
}

// Complete validates the callback and resolves the local account. The
// state check runs before any outbound request. Every error is a *FlowError.
func (g *GoogleOAuth) Complete(ctx context.Context, p CallbackParams) (*models.User, error) {
	if p.Error != "" {
		return nil, flowError(CodeOAuthFailed, fmt.Errorf("provider returned error %q", p.Error))
	}

	if p.Code == "" || p.State == "" {
		return nil, flowError(CodeInvalidRequest, errors.New("missing code or state"))
	}

	if p.StoredState == "" || subtle.ConstantTimeCompare([]byte(p.StoredState), []byte(p.State)) != 1 {
		return nil, flowError(CodeStateMismatch, errors.New("state does not match stored value"))
	}

	if !g.Configured() {
		return nil, flowError(CodeServerError, ErrOAuthNotConfigured)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.client)

	tok, err := g.oauth2Config(p.RedirectURI).Exchange(ctx, p.Code)
	if err != nil {
		return nil, flowError(CodeTokenExchangeFailed, err)
	}

	profile, err := g.fetchProfile(ctx, tok)
	if err != nil {
		return nil, flowError(CodeUserInfoFailed, err)
	}

	if err := checkIDTokenSubject(tok, profile.Subject); err != nil {
		return nil, flowError(CodeUserInfoFailed, err)
	}

	if !profile.EmailVerified {
		g.logger.WarnContext(ctx, "google account email is not verified",
			slog.String("subject", profile.Subject),
			slog.Bool("rejected", g.cfg.RequireVerifiedEmail))
		if g.cfg.RequireVerifiedEmail {
			return nil, flowError(CodeUserInfoFailed, errors.New("email not verified"))
		}
	}

	user, err := g.accounts.FindOrCreateGoogleUser(ctx, profile)
	if err != nil {
		return nil, flowError(CodeServerError, err)
	}

	return user, nil
}

type userInfoResponse struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	EmailVerified bool   `json:"email_verified"`
}

func (g *GoogleOAuth) fetchProfile(ctx context.Context, tok *oauth2.Token) (GoogleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.UserInfoURL, nil)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("failed to build userinfo request: %w", err)
	}
	tok.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return GoogleProfile{}, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var info userInfoResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUserInfoBytes)).Decode(&info); err != nil {
		return GoogleProfile{}, fmt.Errorf("failed to decode userinfo: %w", err)
	}

	if info.Sub == "" {
		return GoogleProfile{}, errors.New("userinfo has no subject")
	}

	return GoogleProfile{
		Subject:       info.Sub,
		Email:         info.Email,
		Name:          info.Name,
		EmailVerified: info.EmailVerified,
	}, nil
}

// checkIDTokenSubject compares the id_token subject with the userinfo
// subject. The id_token came straight from the token endpoint over TLS, so
// its signature is not verified here. A missing id_token is accepted.
func checkIDTokenSubject(tok *oauth2.Token, subject string) error {
	raw, _ := tok.Extra("id_token").(string)
	if raw == "" {
		return nil
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return fmt.Errorf("failed to parse id_token: %w", err)
	}

	if claims.Subject != subject {
		return errors.New("id_token subject does not match userinfo")
	}

	return nil
}
