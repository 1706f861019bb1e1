// Package reqcache attaches the per-request membership cache to the request
// context, so every membership resolution within one request reuses the
// first query's result.
package reqcache

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hearth-app/hearth/internal/authz"
)

// New creates the request-cache middleware.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.SetUserContext(authz.WithRequestCache(c.UserContext()))

		return c.Next()
	}
}
