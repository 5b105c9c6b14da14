package http

import (
	"net/http"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// The upstream auth layer identifies the caller with these headers.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
)

const actorKey = "actor"

// ActorMiddleware rejects requests without a valid actor and stores the actor
// in the echo context.
func ActorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawID := strings.TrimSpace(c.Request().Header.Get(HeaderActorID))
			rawRole := strings.TrimSpace(c.Request().Header.Get(HeaderActorRole))
			if rawID == "" || rawRole == "" {
				return c.JSON(http.StatusUnauthorized, errorResponse{
					Code:    http.StatusUnauthorized,
					Message: "missing actor headers",
				})
			}

			id, err := kernel.UUIDFromString(rawID)
			if err != nil {
				return badRequest(c, "invalid "+HeaderActorID)
			}
			role := kernel.Role(rawRole)
			if role == kernel.RoleSystem {
				return badRequest(c, "the system role is reserved for scheduled jobs")
			}
			actor, err := kernel.NewActor(id, role)
			if err != nil {
				return badRequest(c, "invalid "+HeaderActorRole)
			}

			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

func actorFrom(c echo.Context) kernel.Actor {
	actor, _ := c.Get(actorKey).(kernel.Actor)
	return actor
}
