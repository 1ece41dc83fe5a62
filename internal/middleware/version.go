package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// APIVersion is the current API version, echoed on every response.
const APIVersion = "1.0.0"

// VersionKey is the locals key the negotiated version is stored under.
const VersionKey = "apiVersion"

// VersionMiddleware records the caller's requested X-Api-Version in the
// request context and echoes the served version back on the response.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requested := c.Get("X-Api-Version", APIVersion)

		// "1.0" is an accepted alias for the full version string.
		if requested == "1.0" {
			requested = APIVersion
		}

		c.Locals(VersionKey, requested)
		c.Set("X-Api-Version", APIVersion)

		return c.Next()
	}
}
