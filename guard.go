package verify

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// IdentityLocalsKey is where the guard stores the resolved identity on the
// fiber context.
const IdentityLocalsKey = "identity"

// Guard is the request-level authentication gate: it resolves a bearer token
// into an Identity and enforces role requirements. Authentication and
// authorization are two explicit calls composed by the route registration,
// not an implicit framework pipeline.
type Guard struct {
	tokens *TokenService
	logger Logger
}

// NewGuard returns a Guard backed by the given token service.
func NewGuard(tokens *TokenService, logger Logger) *Guard {
	if logger == nil {
		logger = defLogger{}
	}
	return &Guard{tokens: tokens, logger: logger}
}

// Authenticate extracts the bearer token from the request and verifies it.
// A missing or malformed Authorization header yields ErrUnauthenticated;
// verification failures surface the token service's own errors.
func (g *Guard) Authenticate(c *fiber.Ctx) (Identity, error) {
	raw, err := extractBearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return nil, err
	}

	claims, err := g.tokens.Validate(raw)
	if err != nil {
		return nil, err
	}

	return claims, nil
}

// RequireRole fails with ErrForbidden when the identity does not hold the
// given role.
func (g *Guard) RequireRole(identity Identity, role UserRole) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if identity.Role() != role {
		return ErrForbidden
	}
	return nil
}

// Protected authenticates the request and attaches the identity to the
// fiber locals and the request context for downstream handlers.
func (g *Guard) Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := g.Authenticate(c)
		if err != nil {
			return err
		}

		c.Locals(IdentityLocalsKey, identity)
		c.SetUserContext(WithIdentity(c.UserContext(), identity))
		return c.Next()
	}
}

// RequireAdmin composes Protected with an admin role check.
func (g *Guard) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := g.Authenticate(c)
		if err != nil {
			return err
		}

		if err := g.RequireRole(identity, RoleAdmin); err != nil {
			return err
		}

		c.Locals(IdentityLocalsKey, identity)
		c.SetUserContext(WithIdentity(c.UserContext(), identity))
		return c.Next()
	}
}

// IdentityFromFiber retrieves the identity a guard middleware attached to
// the request.
func IdentityFromFiber(c *fiber.Ctx) (Identity, bool) {
	identity, ok := c.Locals(IdentityLocalsKey).(Identity)
	return identity, ok
}

func extractBearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrUnauthenticated
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrUnauthenticated
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrUnauthenticated
	}

	return token, nil
}
