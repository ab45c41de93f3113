// Package auth resolves who is making a request: local password login,
// server-side sessions and Google sign-in.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/blogauth/internal/crypto"
	"github.com/iudanet/blogauth/internal/models"
	"github.com/iudanet/blogauth/internal/server/storage"
)

const (
	// SessionTTL is the lifetime of a session and of its cookie
	SessionTTL = 7 * 24 * time.Hour

	sessionTokenBytes = 32

	// attempts to insert a Google user before giving up on username collisions
	maxCreateAttempts = 3

	defaultUsername = "user"
)

var (
	// ErrInvalidCredentials is returned for every failed local login
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUnauthenticated means the request carries no live session
	ErrUnauthenticated = errors.New("unauthenticated")
)

// dummyRecord is verified when there is no real record so that a failed
// lookup costs the same PBKDF2 work as a wrong password.
var dummyRecord = strconv.Itoa(crypto.PBKDF2Iterations) + "$" +
	strings.Repeat("00", crypto.PasswordSaltSize) + "$" +
	strings.Repeat("00", crypto.PBKDF2KeyLen)

// GoogleProfile is the identity returned by the provider's userinfo endpoint
type GoogleProfile struct {
	Subject       string
	Email         string
	Name          string
	EmailVerified bool
}

// Service implements session lifecycle and account resolution
type Service struct {
	logger   *slog.Logger
	users    storage.UserStorage
	sessions storage.SessionStorage
	now      func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new authentication service
func NewService(logger *slog.Logger, users storage.UserStorage, sessions storage.SessionStorage, opts ...Option) *Service {
	s := &Service{
		logger:   logger,
		users:    users,
		sessions: sessions,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AuthenticateLocal checks a username and password. Unknown users, users
// without a local credential and wrong passwords all yield
// ErrInvalidCredentials. The username lookup itself is not constant time.
func (s *Service) AuthenticateLocal(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			crypto.VerifyPassword(password, dummyRecord)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.HasLocalCredential() {
		crypto.VerifyPassword(password, dummyRecord)
		return nil, ErrInvalidCredentials
	}

	if !crypto.VerifyPassword(password, *user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if crypto.NeedsRehash(*user.PasswordHash) {
		s.rehash(ctx, user, password)
	}

	return user, nil
}

func (s *Service) rehash(ctx context.Context, user *models.User, password string) {
	record, err := crypto.HashPassword(password)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to rehash password", slog.Int64("user_id", user.ID), slog.Any("error", err))
		return
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, record); err != nil {
		s.logger.WarnContext(ctx, "failed to store rehashed password", slog.Int64("user_id", user.ID), slog.Any("error", err))
		return
	}
	user.PasswordHash = &record
	s.logger.InfoContext(ctx, "password hash upgraded", slog.Int64("user_id", user.ID))
}

// CreateSession opens a new session for userID and returns its token and
// expiry. Other sessions of the user are left alone.
func (s *Service) CreateSession(ctx context.Context, userID int64) (string, time.Time, error) {
	token, err := crypto.GenerateToken(sessionTokenBytes)
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt := s.now().Add(SessionTTL).UTC().Truncate(time.Second)

	session := &models.Session{
		ID:        token,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create session: %w", err)
	}

	return token, expiresAt, nil
}

// ResolveSession returns the owner of a live session. Expired sessions are
// deleted on sight.
func (s *Service) ResolveSession(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if session.Expired(s.now()) {
		if err := s.sessions.DeleteSession(ctx, token); err != nil {
			s.logger.WarnContext(ctx, "failed to delete expired session", slog.Any("error", err))
		}
		return nil, ErrUnauthenticated
	}

	user, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to get session user: %w", err)
	}

	return user, nil
}

// RevokeSession deletes the session if it exists
func (s *Service) RevokeSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// FindOrCreateGoogleUser returns the account linked to the profile subject,
// creating one with a username derived from the email when none exists.
func (s *Service) FindOrCreateGoogleUser(ctx context.Context, profile GoogleProfile) (*models.User, error) {
	if profile.Subject == "" {
		return nil, errors.New("google profile has no subject")
	}

	user, err := s.users.GetUserByGoogleID(ctx, profile.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to get user by google id: %w", err)
	}

	base := UsernameFromEmail(profile.Email)

	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		username, err := s.freeUsername(ctx, base)
		if err != nil {
			return nil, err
		}

		subject := profile.Subject
		user := &models.User{
			Username: username,
			GoogleID: &subject,
			Role:     models.RoleUser,
		}
		if profile.Email != "" {
			email := profile.Email
			user.Email = &email
		}

		err = s.users.CreateUser(ctx, user)
		if err == nil {
			s.logger.InfoContext(ctx, "google user created",
				slog.Int64("user_id", user.ID),
				slog.String("username", user.Username))
			return user, nil
		}
		if !errors.Is(err, storage.ErrUserAlreadyExists) {
			return nil, fmt.Errorf("failed to create google user: %w", err)
		}

		// lost a race: either the same subject signed up concurrently or
		// another signup took the username between check and insert
		if existing, err := s.users.GetUserByGoogleID(ctx, profile.Subject); err == nil {
			return existing, nil
		}
		s.logger.WarnContext(ctx, "username taken during google signup, retrying",
			slog.String("username", username),
			slog.Int("attempt", attempt))
	}

	return nil, fmt.Errorf("failed to allocate username for %q after %d attempts", base, maxCreateAttempts)
}

// freeUsername returns base, or base followed by the smallest positive
// integer that is not taken.
func (s *Service) freeUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for n := 1; ; n++ {
		_, err := s.users.GetUserByUsername(ctx, candidate)
		if errors.Is(err, storage.ErrUserNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		candidate = base + strconv.Itoa(n)
	}
}

// UsernameFromEmail derives a username candidate from the local part of an
// email: lowercased, restricted to [a-z0-9_], "user" when nothing is left.
func UsernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.ToLower(local)

	var b strings.Builder
	for _, r := range local {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return defaultUsername
	}
	return b.String()
}
