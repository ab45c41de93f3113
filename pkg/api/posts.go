package api

import "time"

// CreatePostRequest is the body of POST /api/posts
type CreatePostRequest struct {
	PrivatePassword *string `json:"privatePassword"`
	HeroImage       *string `json:"heroImage" validate:"omitempty,max=2048"`
	Title           string  `json:"title" validate:"required"`
	Description     string  `json:"description" validate:"required"`
	Content         string  `json:"content" validate:"required"`
	IsPrivate       bool    `json:"isPrivate"`
}

// UpdatePostRequest is the body of PUT /api/posts/{id}. Absent fields keep
// their stored values.
type UpdatePostRequest struct {
	Title           *string `json:"title"`
	Slug            *string `json:"slug" validate:"omitempty,max=200"`
	Description     *string `json:"description"`
	Content         *string `json:"content"`
	IsPrivate       *bool   `json:"isPrivate"`
	PrivatePassword *string `json:"privatePassword"`
	HeroImage       *string `json:"heroImage" validate:"omitempty,max=2048"`
}

// Post is the wire form of a post
type Post struct {
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	PrivatePassword *string   `json:"privatePassword,omitempty"`
	HeroImage       *string   `json:"heroImage"`
	UserID          *int64    `json:"userId"`
	AuthorUsername  *string   `json:"authorUsername,omitempty"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description"`
	Content         string    `json:"content"`
	ID              int64     `json:"id"`
	IsPrivate       bool      `json:"isPrivate"`
}

// PostResponse wraps a single post
type PostResponse struct {
	Post Post `json:"post"`
}

// PostsResponse wraps a list of posts
type PostsResponse struct {
	Posts []Post `json:"posts"`
}
