// Package authz holds the admin-versus-owner authorization predicates.
// Every predicate treats a nil user as anonymous and denies.
package authz

import "github.com/iudanet/blogauth/internal/models"

// IsAdmin reports whether u has the admin role
func IsAdmin(u *models.User) bool {
	return u != nil && u.Role == models.RoleAdmin
}

// CanModify reports whether u may edit or delete a resource owned by
// ownerID. Admins may modify anything, other users only what they own.
// Ownerless resources are admin-only.
func CanModify(u *models.User, ownerID *int64) bool {
	if u == nil {
		return false
	}
	if IsAdmin(u) {
		return true
	}
	return ownerID != nil && *ownerID == u.ID
}

// CanViewAll reports whether u may see every account and resource
func CanViewAll(u *models.User) bool {
	return IsAdmin(u)
}
