package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/HarooHub/internal/pkg/session"
	"github.com/ManuelReschke/HarooHub/internal/pkg/usercontext"
)

// UserContextMiddleware exposes the resolved session to handlers and templates
func UserContextMiddleware(m *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st := m.Current(c)
		c.Locals(usercontext.LocalsKey, usercontext.UserContext{
			AccountID:  st.AccountID,
			SessionID:  st.ID,
			IsLoggedIn: st.Authenticated(),
			CSRFToken:  CSRFToken(c),
		})
		return c.Next()
	}
}
