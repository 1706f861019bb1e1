// Package identity provides the fiber middleware that attaches the already
// verified caller identity to a request. Token verification itself happens
// upstream; this service trusts the verifier it is handed.
package identity

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Header carries the verified caller id set by the authenticating proxy.
const Header = "X-User-ID"

// localsKey is the fiber.Locals key the identity is stored under.
const localsKey = "identity"

// ErrNoIdentity is returned by a Verifier when the request carries no usable
// identity.
var ErrNoIdentity = errors.New("request carries no verified identity")

// Identity is the already-authenticated caller.
type Identity struct {
	UserID uuid.UUID
}

// Verifier extracts the verified caller identity from a request.
type Verifier interface {
	Verify(c *fiber.Ctx) (Identity, error)
}

// HeaderVerifier trusts the id forwarded by the authenticating proxy in the
// X-User-ID header.
type HeaderVerifier struct{}

// Verify parses the forwarded user id.
func (HeaderVerifier) Verify(c *fiber.Ctx) (Identity, error) {
	raw := c.Get(Header)
	if raw == "" {
		return Identity{}, ErrNoIdentity
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return Identity{}, ErrNoIdentity
	}

	return Identity{UserID: userID}, nil
}

// New creates the identity middleware. Requests without a verifiable
// identity are rejected with 401 before any handler runs.
func New(v Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := v.Verify(c)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals(localsKey, id)

		return c.Next()
	}
}

// FromCtx returns the identity attached to the request.
func FromCtx(c *fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(localsKey).(Identity)
	return id, ok
}
