package models

import "time"

// Session is a server-side login session. ID is the raw bearer token stored
// in the session cookie.
type Session struct {
	ExpiresAt time.Time `json:"expires_at"`
	ID        string    `json:"-"`
	UserID    int64     `json:"user_id"`
}

// Expired reports whether the session is dead at the given instant.
// A session is expired from its ExpiresAt onwards.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
