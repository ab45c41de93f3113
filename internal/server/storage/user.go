package storage

import (
	"context"

	"github.com/iudanet/blogauth/internal/models"
)

// UserStorage defines interface for user account persistence.
// Users are never deleted through this interface.
type UserStorage interface {
	// CreateUser inserts the user and sets its ID and CreatedAt.
	// Returns ErrUserAlreadyExists on a username or Google subject collision
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// GetUserByUsername retrieves user by exact username
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByGoogleID retrieves user by Google subject identifier
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error)

	// UpdatePasswordHash replaces the stored credential record
	// Returns ErrUserNotFound if user doesn't exist
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error

	// ListUsers returns all users ordered by ID
	ListUsers(ctx context.Context) ([]*models.User, error)

	// CountUsers returns the number of user rows
	CountUsers(ctx context.Context) (int, error)
}
