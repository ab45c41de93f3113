package validation

import (
	"fmt"
	"regexp"
)

// SlugPattern is the URL-safe form produced by slug generation:
// lowercase alphanumeric runs joined by single dashes.
var SlugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// MaxSlugLen bounds slugs supplied by clients
const MaxSlugLen = 200

// ValidateSlug checks a client-supplied post slug
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug cannot be empty")
	}

	if len(slug) > MaxSlugLen {
		return fmt.Errorf("slug must not exceed %d characters", MaxSlugLen)
	}

	if !SlugPattern.MatchString(slug) {
		return fmt.Errorf("slug can only contain lowercase letters, numbers and single dashes")
	}

	return nil
}
