package storage

import (
	"context"

	"github.com/iudanet/blogauth/internal/models"
)

// PostStorage defines interface for blog post persistence
type PostStorage interface {
	// CreatePost inserts the post and sets ID, CreatedAt and UpdatedAt
	// Returns ErrSlugTaken if the slug is already in use
	CreatePost(ctx context.Context, post *models.Post) error

	// GetPostByID retrieves post with its author username
	// Returns ErrPostNotFound if post doesn't exist
	GetPostByID(ctx context.Context, id int64) (*models.Post, error)

	// GetPostBySlug retrieves post by slug
	// Returns ErrPostNotFound if post doesn't exist
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)

	// ListPosts returns posts newest first; private posts only when includePrivate
	ListPosts(ctx context.Context, includePrivate bool) ([]*models.Post, error)

	// UpdatePost overwrites the mutable fields of post id and bumps UpdatedAt.
	// Returns ErrPostNotFound or ErrSlugTaken
	UpdatePost(ctx context.Context, id int64, post *models.Post) error

	// DeletePost deletes post by ID
	// Returns ErrPostNotFound if post doesn't exist
	DeletePost(ctx context.Context, id int64) error

	// SlugExists reports whether a post other than excludeID uses slug.
	// Pass 0 to check against every post
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
}
