package posts

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the post id or slug has no row
	ErrNotFound = errors.New("post not found")

	// ErrForbidden means the caller is neither the owner nor an admin
	ErrForbidden = errors.New("forbidden: you do not have permission to modify this post")

	// ErrSlugTaken means an explicitly requested slug belongs to another post
	ErrSlugTaken = errors.New("slug already taken")

	// ErrPasswordRequired means a private post was requested without its password
	ErrPasswordRequired = errors.New("password required")
)

// ValidationError reports missing or malformed input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
