package router

import (
	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get("/", h.main.HandleIndex)
	app.Get("/health", h.main.HandleHealth)

	// Local auth
	app.Get("/login", h.auth.HandleLoginPage)
	app.Post("/login", h.auth.HandleLogin)
	app.Get("/signup", h.auth.HandleSignupPage)
	app.Post("/signup", h.auth.HandleSignup)
	app.Get("/logout", h.auth.HandleLogout)
	app.Post("/logout", h.auth.HandleLogout)

	// Social OAuth
	app.Get("/auth/:provider", h.oauth.HandleBegin)
	app.Get("/auth/:provider/callback", h.oauth.HandleCallback)
}
