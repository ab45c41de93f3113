package storage

import (
	"context"
	"time"

	"github.com/iudanet/blogauth/internal/models"
)

// SessionStorage defines interface for login session persistence
type SessionStorage interface {
	// CreateSession stores a new session row
	CreateSession(ctx context.Context, session *models.Session) error

	// GetSession retrieves a session by its token, expired or not
	// Returns ErrSessionNotFound if session doesn't exist
	GetSession(ctx context.Context, id string) (*models.Session, error)

	// DeleteSession removes a session. Deleting an absent session is not an error
	DeleteSession(ctx context.Context, id string) error

	// DeleteUserSessions removes every session of a user
	// Returns number of deleted sessions
	DeleteUserSessions(ctx context.Context, userID int64) (int, error)

	// DeleteExpiredSessions removes sessions with expires_at <= now
	// Returns number of deleted sessions
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)
}
