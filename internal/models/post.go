package models

import "time"

// Post is a blog post. PrivatePassword gates reading of private posts and is
// unrelated to account credentials.
type Post struct {
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	PrivatePassword *string   `json:"private_password,omitempty"`
	HeroImage       *string   `json:"hero_image,omitempty"`
	UserID          *int64    `json:"user_id,omitempty"`
	AuthorUsername  *string   `json:"author_username,omitempty"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description"`
	Content         string    `json:"content"`
	ID              int64     `json:"id"`
	IsPrivate       bool      `json:"is_private"`
}

// PostPatch is a partial update. A nil field keeps the current value.
type PostPatch struct {
	Title           *string
	Slug            *string
	Description     *string
	Content         *string
	IsPrivate       *bool
	PrivatePassword *string
	HeroImage       *string
}

// Apply returns a copy of p with every present patch field applied.
// Empty PrivatePassword or HeroImage values clear the field.
func (pp PostPatch) Apply(p Post) Post {
	if pp.Title != nil {
		p.Title = *pp.Title
	}
	if pp.Slug != nil {
		p.Slug = *pp.Slug
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Content != nil {
		p.Content = *pp.Content
	}
	if pp.IsPrivate != nil {
		p.IsPrivate = *pp.IsPrivate
	}
	if pp.PrivatePassword != nil {
		p.PrivatePassword = nonEmpty(*pp.PrivatePassword)
	}
	if pp.HeroImage != nil {
		p.HeroImage = nonEmpty(*pp.HeroImage)
	}
	return p
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
