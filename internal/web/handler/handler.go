// Package handler provides the pieces shared by all API handlers: route
// constants, id parsing, membership resolution and the single error
// translation boundary.
package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/hearth-app/hearth/internal/authz"
	"github.com/hearth-app/hearth/internal/web/middleware/identity"
)

const (
	// APIPath is the base path of the JSON API.
	APIPath = "/api"

	// GroupPath is the base path of one group's resources.
	GroupPath = APIPath + "/groups/:groupId"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"
)

// ParseID parses a path parameter as a UUID. A syntactically invalid or
// missing id is treated as a resource that does not exist, never as a
// distinct input error.
func ParseID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, authz.ErrResourceNotFound
	}

	return id, nil
}

// ParseBodyID parses a UUID carried in a request body. Like path ids, an
// unparseable value is treated as a resource that does not exist.
func ParseBodyID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, authz.ErrResourceNotFound
	}

	return id, nil
}

// Caller returns the verified identity attached by the identity middleware.
func Caller(c *fiber.Ctx) (identity.Identity, error) {
	id, ok := identity.FromCtx(c)
	if !ok {
		return identity.Identity{}, fiber.ErrUnauthorized
	}

	return id, nil
}

// Membership resolves the caller's membership of the group named in the
// route. The result is cached for the remainder of the request.
func Membership(c *fiber.Ctx, resolver *authz.Resolver) (authz.Membership, error) {
	caller, err := Caller(c)
	if err != nil {
		return authz.Membership{}, err
	}

	groupID, err := ParseID(c, "groupId")
	if err != nil {
		return authz.Membership{}, err
	}

	return resolver.Resolve(c.UserContext(), caller.UserID, groupID)
}
