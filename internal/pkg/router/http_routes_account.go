package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/HarooHub/internal/pkg/middleware"
)

func (h HttpRouter) registerAccountRoutes(app *fiber.App) {
	group := app.Group("/account", middleware.RequireAuth)
	group.Get("/", h.account.HandleAccount)
	group.Post("/password", h.account.HandlePassword)
	group.Post("/delete", h.account.HandleDelete)
	group.Get("/unlink/:provider", h.account.HandleUnlink)
}
