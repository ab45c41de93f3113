// Package posts applies authorization and slug rules on top of the post store.
package posts

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/iudanet/blogauth/internal/auth"
	"github.com/iudanet/blogauth/internal/authz"
	"github.com/iudanet/blogauth/internal/models"
	"github.com/iudanet/blogauth/internal/server/storage"
	"github.com/iudanet/blogauth/internal/validation"
)

const maxCreateAttempts = 3

// Input is the data for a new post
type Input struct {
	PrivatePassword *string
	HeroImage       *string
	Title           string
	Description     string
	Content         string
	IsPrivate       bool
}

// Service is the post use-case layer
type Service struct {
	logger *slog.Logger
	posts  storage.PostStorage
}

// NewService creates a new post service
func NewService(logger *slog.Logger, posts storage.PostStorage) *Service {
	return &Service{
		logger: logger,
		posts:  posts,
	}
}

// Create stores a new post owned by user. The slug is derived from the title
// and suffixed with -1, -2, ... until free.
func (s *Service) Create(ctx context.Context, user *models.User, in Input) (*models.Post, error) {
	if user == nil {
		return nil, auth.ErrUnauthenticated
	}

	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, &ValidationError{Message: "Title, description, and content are required"}
	}

	ownerID := user.ID
	post := &models.Post{
		Title:           in.Title,
		Description:     in.Description,
		Content:         in.Content,
		IsPrivate:       in.IsPrivate,
		PrivatePassword: nonEmpty(in.PrivatePassword),
		HeroImage:       nonEmpty(in.HeroImage),
		UserID:          &ownerID,
	}

	for attempt := 1; ; attempt++ {
		slug, err := s.uniqueSlug(ctx, in.Title, 0)
		if err != nil {
			return nil, err
		}
		post.Slug = slug

		err = s.posts.CreatePost(ctx, post)
		if err == nil {
			break
		}
		if !errors.Is(err, storage.ErrSlugTaken) || attempt == maxCreateAttempts {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}
	}

	post.AuthorUsername = &user.Username

	s.logger.InfoContext(ctx, "post created",
		slog.Int64("post_id", post.ID),
		slog.String("slug", post.Slug),
		slog.Int64("user_id", user.ID))

	return post, nil
}

// Get returns a post by id for an authenticated caller
func (s *Service) Get(ctx context.Context, user *models.User, id int64) (*models.Post, error) {
	if user == nil {
		return nil, auth.ErrUnauthenticated
	}

	post, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return redactFor(user, post), nil
}

// Update applies patch to post id. Giving a title without a slug
// regenerates the slug; an explicit slug must be URL-safe and unused.
// Ownership never changes.
func (s *Service) Update(ctx context.Context, user *models.User, id int64, patch models.PostPatch) (*models.Post, error) {
	if user == nil {
		return nil, auth.ErrUnauthenticated
	}

	existing, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !authz.CanModify(user, existing.UserID) {
		s.logger.WarnContext(ctx, "post update forbidden",
			slog.Int64("post_id", id),
			slog.Int64("user_id", user.ID))
		return nil, ErrForbidden
	}

	for _, f := range []struct {
		value *string
		name  string
	}{
		{name: "title", value: patch.Title},
		{name: "description", value: patch.Description},
		{name: "content", value: patch.Content},
	} {
		if f.value != nil && strings.TrimSpace(*f.value) == "" {
			return nil, &ValidationError{Field: f.name, Message: "cannot be empty"}
		}
	}

	if patch.Slug != nil && *patch.Slug == "" {
		patch.Slug = nil
	}

	switch {
	case patch.Slug != nil:
		if err := validation.ValidateSlug(*patch.Slug); err != nil {
			return nil, &ValidationError{Field: "slug", Message: err.Error()}
		}
		taken, err := s.posts.SlugExists(ctx, *patch.Slug, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check slug: %w", err)
		}
		if taken {
			return nil, ErrSlugTaken
		}
	case patch.Title != nil:
		slug, err := s.uniqueSlug(ctx, *patch.Title, id)
		if err != nil {
			return nil, err
		}
		patch.Slug = &slug
	}

	updated := patch.Apply(*existing)

	if err := s.posts.UpdatePost(ctx, id, &updated); err != nil {
		switch {
		case errors.Is(err, storage.ErrSlugTaken):
			return nil, ErrSlugTaken
		case errors.Is(err, storage.ErrPostNotFound):
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	s.logger.InfoContext(ctx, "post updated",
		slog.Int64("post_id", id),
		slog.Int64("user_id", user.ID))

	return &updated, nil
}

// Delete removes post id if user may modify it
func (s *Service) Delete(ctx context.Context, user *models.User, id int64) error {
	if user == nil {
		return auth.ErrUnauthenticated
	}

	existing, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}

	if !authz.CanModify(user, existing.UserID) {
		s.logger.WarnContext(ctx, "post delete forbidden",
			slog.Int64("post_id", id),
			slog.Int64("user_id", user.ID))
		return ErrForbidden
	}

	if err := s.posts.DeletePost(ctx, id); err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.logger.InfoContext(ctx, "post deleted",
		slog.Int64("post_id", id),
		slog.Int64("user_id", user.ID))

	return nil
}

// List returns every post, private ones included, to any signed-in user.
// Private passwords are shown only on posts the user may modify.
func (s *Service) List(ctx context.Context, user *models.User) ([]*models.Post, error) {
	if user == nil {
		return nil, auth.ErrUnauthenticated
	}

	all, err := s.posts.ListPosts(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	for i, p := range all {
		all[i] = redactFor(user, p)
	}

	return all, nil
}

// ListPublic returns the posts that are not private
func (s *Service) ListPublic(ctx context.Context) ([]*models.Post, error) {
	public, err := s.posts.ListPosts(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list public posts: %w", err)
	}

	for i, p := range public {
		public[i] = redactFor(nil, p)
	}

	return public, nil
}

// GetPublicBySlug returns a post for anonymous readers. A private post is
// returned only when password equals its private password.
func (s *Service) GetPublicBySlug(ctx context.Context, slug, password string) (*models.Post, error) {
	post, err := s.posts.GetPostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	if post.IsPrivate {
		if post.PrivatePassword == nil ||
			subtle.ConstantTimeCompare([]byte(*post.PrivatePassword), []byte(password)) != 1 {
			return nil, ErrPasswordRequired
		}
	}

	return redactFor(nil, post), nil
}

func (s *Service) getByID(ctx context.Context, id int64) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// uniqueSlug slugifies title and appends -N until no post other than
// excludeID uses it.
func (s *Service) uniqueSlug(ctx context.Context, title string, excludeID int64) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = fallbackSlug
	}

	candidate := base
	for n := 1; ; n++ {
		taken, err := s.posts.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}

func redactFor(user *models.User, p *models.Post) *models.Post {
	if p.PrivatePassword == nil || authz.CanModify(user, p.UserID) {
		return p
	}
	redacted := *p
	redacted.PrivatePassword = nil
	return &redacted
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
