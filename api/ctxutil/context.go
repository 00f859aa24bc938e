// Package ctxutil moves per-request values between gin and the layers below.
package ctxutil

import (
	"context"

	"ordersvc/api/response"
	"ordersvc/domain/identity"
	"ordersvc/infrastructure/persistence"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// WithRequestID returns the request context tagged with the request id, so
// repository logs carry it.
func WithRequestID(c *gin.Context) context.Context {
	return persistence.ContextWithRequestID(c.Request.Context(), response.GetRequestID(c))
}

func SetActor(c *gin.Context, actor identity.Actor) {
	c.Set(actorKey, actor)
}

// Actor returns the authenticated caller, or the zero (anonymous) actor.
func Actor(c *gin.Context) identity.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(identity.Actor); ok {
			return actor
		}
	}
	return identity.Actor{}
}
