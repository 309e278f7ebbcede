package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/HarooHub/internal/pkg/session"
)

// SessionResolver loads or creates the session before anything else runs. When the store is
// down the request ends here with a 503, so the CSRF check is never skipped.
func SessionResolver(m *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := m.Resolve(c); err != nil {
			return err
		}
		return c.Next()
	}
}
