package models

import "time"

// Role is the account role used by the authorization predicates
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is an account row. PasswordHash is nil for accounts created through
// Google sign-in; GoogleID is nil for local-only accounts.
type User struct {
	CreatedAt    time.Time `json:"created_at"`
	Email        *string   `json:"email,omitempty"`
	GoogleID     *string   `json:"-"`
	PasswordHash *string   `json:"-"`
	Username     string    `json:"username"`
	Role         Role      `json:"role"`
	ID           int64     `json:"id"`
}

// HasLocalCredential reports whether the user can sign in with a password
func (u *User) HasLocalCredential() bool {
	return u != nil && u.PasswordHash != nil && *u.PasswordHash != ""
}

// PublicUser is the subset of User fields that is safe to return to clients
type PublicUser struct {
	Email    *string `json:"email,omitempty"`
	Username string  `json:"username"`
	Role     Role    `json:"role"`
	ID       int64   `json:"id"`
}

// Public strips credential fields from the user
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}
