package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/HarooHub/internal/pkg/session"
)

// Pipeline returns the request stages in the order they must run:
// session resolution, CSRF guard, return path capture and user context. Routing follows.
func Pipeline(m *session.Manager) []fiber.Handler {
	return []fiber.Handler{
		SessionResolver(m),
		NewCSRF(m),
		ReturnPath(m),
		UserContextMiddleware(m),
	}
}

// Install registers the pipeline on the app before any route.
func Install(app *fiber.App, m *session.Manager) {
	for _, stage := range Pipeline(m) {
		app.Use(stage)
	}
}
