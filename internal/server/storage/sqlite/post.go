package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/blogauth/internal/models"
	"github.com/iudanet/blogauth/internal/server/storage"
)

const postSelect = `
	SELECT p.id, p.title, p.slug, p.description, p.content, p.is_private,
	       p.private_password, p.hero_image, p.user_id, u.username,
	       p.created_at, p.updated_at
	FROM posts p
	LEFT JOIN users u ON u.id = p.user_id
`

func scanPost(row rowScanner) (*models.Post, error) {
	post := &models.Post{}
	var (
		privatePassword, heroImage, author sql.NullString
		userID                             sql.NullInt64
		createdAt, updatedAt               int64
	)

	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Slug,
		&post.Description,
		&post.Content,
		&post.IsPrivate,
		&privatePassword,
		&heroImage,
		&userID,
		&author,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	post.PrivatePassword = nullString(privatePassword)
	post.HeroImage = nullString(heroImage)
	post.AuthorUsername = nullString(author)
	if userID.Valid {
		id := userID.Int64
		post.UserID = &id
	}
	post.CreatedAt = fromUnix(createdAt)
	post.UpdatedAt = fromUnix(updatedAt)

	return post, nil
}

// CreatePost creates a new post
func (s *Storage) CreatePost(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (title, slug, description, content, is_private,
		                   private_password, hero_image, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	post.CreatedAt = nowOr(post.CreatedAt)
	post.UpdatedAt = post.CreatedAt

	result, err := s.db.ExecContext(ctx, query,
		post.Title,
		post.Slug,
		post.Description,
		post.Content,
		post.IsPrivate,
		post.PrivatePassword,
		post.HeroImage,
		post.UserID,
		toUnix(post.CreatedAt),
		toUnix(post.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err, "posts.slug") {
			return storage.ErrSlugTaken
		}
		return fmt.Errorf("failed to insert post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get post id: %w", err)
	}
	post.ID = id

	return nil
}

// GetPostByID retrieves post by ID
func (s *Storage) GetPostByID(ctx context.Context, id int64) (*models.Post, error) {
	return s.getPost(ctx, postSelect+` WHERE p.id = ?`, id)
}

// GetPostBySlug retrieves post by slug
func (s *Storage) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.getPost(ctx, postSelect+` WHERE p.slug = ?`, slug)
}

func (s *Storage) getPost(ctx context.Context, query string, arg any) (*models.Post, error) {
	post, err := scanPost(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// ListPosts returns posts newest first
func (s *Storage) ListPosts(ctx context.Context, includePrivate bool) ([]*models.Post, error) {
	query := postSelect
	if !includePrivate {
		query += ` WHERE p.is_private = 0`
	}
	query += ` ORDER BY p.created_at DESC, p.id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	posts := make([]*models.Post, 0)

	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return posts, nil
}

// UpdatePost overwrites the mutable fields of a post
func (s *Storage) UpdatePost(ctx context.Context, id int64, post *models.Post) error {
	query := `
		UPDATE posts
		SET title = ?, slug = ?, description = ?, content = ?, is_private = ?,
		    private_password = ?, hero_image = ?, updated_at = ?
		WHERE id = ?
	`

	post.UpdatedAt = nowOr(time.Time{})

	result, err := s.db.ExecContext(ctx, query,
		post.Title,
		post.Slug,
		post.Description,
		post.Content,
		post.IsPrivate,
		post.PrivatePassword,
		post.HeroImage,
		toUnix(post.UpdatedAt),
		id,
	)
	if err != nil {
		if isUniqueViolation(err, "posts.slug") {
			return storage.ErrSlugTaken
		}
		return fmt.Errorf("failed to update post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrPostNotFound
	}

	return nil
}

// DeletePost deletes post by ID
func (s *Storage) DeletePost(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrPostNotFound
	}

	return nil
}

// SlugExists reports whether a post other than excludeID uses slug
func (s *Storage) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM posts WHERE slug = ? AND id != ?)`
	if err := s.db.QueryRowContext(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}
