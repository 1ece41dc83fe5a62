package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/fabrica/internal/auth"
	"github.com/localnerve/fabrica/internal/types"
)

// IdentityKey is the locals key the authenticated identity is stored under.
const IdentityKey = "identity"

// SessionCookie is the cookie consulted when no bearer token is present.
const SessionCookie = "fabrica_session"

// lazyInitProvider is implemented by providers that need the request
// protocol and host before they can serve, such as the Authorizer client.
type lazyInitProvider interface {
	Init(requestProtocol, requestHost string) error
}

// Authenticate resolves the request credential through the provider and
// stores the caller identity in the request context. The credential is the
// Authorization bearer token when present, else the session cookie.
func Authenticate(provider auth.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if lazy, ok := provider.(lazyInitProvider); ok {
			if err := lazy.Init(c.Protocol(), c.Hostname()); err != nil {
				return types.Collaborator(err)
			}
		}

		credential := bearerToken(c)
		if credential == "" {
			credential = c.Cookies(SessionCookie)
		}
		if credential == "" {
			return types.Unauthenticated("Authentication required")
		}

		ident, err := provider.Authenticate(c.Context(), credential)
		if err != nil {
			return err
		}

		c.Locals(IdentityKey, ident)
		return c.Next()
	}
}

// RequireRoles allows only callers whose role is in the given set. It must
// run after Authenticate.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident := Identity(c)
		if ident == nil {
			return types.Unauthenticated("Authentication required")
		}
		for _, role := range roles {
			if ident.Role == role {
				return c.Next()
			}
		}
		return types.Forbidden("Insufficient permissions")
	}
}

// Identity returns the authenticated caller stored by Authenticate, or nil.
func Identity(c *fiber.Ctx) *auth.Identity {
	ident, _ := c.Locals(IdentityKey).(*auth.Identity)
	return ident
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
