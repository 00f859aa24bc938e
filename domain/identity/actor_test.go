package identity

import (
	"testing"

	"ordersvc/domain/shared"

	"github.com/stretchr/testify/assert"
)

func TestActorAuthorization(t *testing.T) {
	admin := Actor{UserID: "a", Roles: []string{"USER", RoleAdmin}}
	user := Actor{UserID: "u", Roles: []string{"USER"}}

	assert.NoError(t, admin.RequireAdmin())
	assert.ErrorIs(t, user.RequireAdmin(), shared.ErrForbidden)
	assert.ErrorIs(t, Actor{}.RequireAdmin(), shared.ErrUnauthorized)

	assert.NoError(t, user.RequireOwnerOrAdmin("u"))
	assert.NoError(t, admin.RequireOwnerOrAdmin("u"))
	assert.ErrorIs(t, user.RequireOwnerOrAdmin("other"), shared.ErrForbidden)
	assert.ErrorIs(t, Actor{}.RequireOwnerOrAdmin(""), shared.ErrUnauthorized)

	assert.True(t, System.IsAdmin())
}
