// Package identity describes who is calling. Authentication happens at the
// edge; the domain and application layers only see an Actor.
package identity

import (
	"fmt"

	"ordersvc/domain/shared"
)

const RoleAdmin = "ADMIN"

// Actor is an authenticated caller.
type Actor struct {
	UserID string
	Roles  []string
}

// System is the actor used by background consumers.
var System = Actor{UserID: "system", Roles: []string{RoleAdmin}}

// IsAdmin reports whether the actor holds the administrative role.
func (a Actor) IsAdmin() bool {
	for _, r := range a.Roles {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}

// IsAnonymous reports whether no user was resolved.
func (a Actor) IsAnonymous() bool {
	return a.UserID == ""
}

// CanAccessUser allows admins and the user themselves.
func (a Actor) CanAccessUser(userID string) bool {
	return a.IsAdmin() || (a.UserID != "" && a.UserID == userID)
}

// RequireAdmin returns shared.ErrForbidden unless the actor is an admin.
func (a Actor) RequireAdmin() error {
	if a.IsAnonymous() {
		return shared.ErrUnauthorized
	}
	if !a.IsAdmin() {
		return shared.NewForbiddenError("actor", "administrator role required")
	}
	return nil
}

// RequireOwnerOrAdmin guards resources owned by userID.
func (a Actor) RequireOwnerOrAdmin(userID string) error {
	if a.IsAnonymous() {
		return shared.ErrUnauthorized
	}
	if !a.CanAccessUser(userID) {
		return shared.NewForbiddenError("actor", fmt.Sprintf("user %s may not access resources of %s", a.UserID, userID))
	}
	return nil
}
