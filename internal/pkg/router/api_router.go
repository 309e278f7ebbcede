package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/HarooHub/app/controllers"
	"github.com/ManuelReschke/HarooHub/internal/pkg/middleware"
)

type ApiRouter struct {
	deps    Dependencies
	account *controllers.APIAccountController
}

func NewApiRouter(deps Dependencies) *ApiRouter {
	return &ApiRouter{
		deps:    deps,
		account: controllers.NewAPIAccountController(deps.Sessions, deps.Accounts, deps.Outcomes),
	}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	handlers := []fiber.Handler{}
	if h.deps.CORSOrigins != "" {
		handlers = append(handlers, cors.New(cors.Config{
			AllowOrigins: h.deps.CORSOrigins,
			AllowMethods: "POST,OPTIONS",
		}))
	}
	if h.deps.APIRateLimit > 0 {
		handlers = append(handlers, limiter.New(limiter.Config{
			Max:        h.deps.APIRateLimit,
			Expiration: time.Minute,
		}))
	}
	api := app.Group("/api/account", handlers...)

	api.Post("/create", h.account.HandleCreate)
	api.Post("/access", h.account.HandleAccess)

	api.Post("/read", middleware.RequireAPISessionAuth, h.account.HandleRead)
	api.Post("/update", middleware.RequireAPISessionAuth, h.account.HandleUpdate)
	api.Post("/dismiss", middleware.RequireAPISessionAuth, h.account.HandleDismiss)
	api.Post("/remove", middleware.RequireAPISessionAuth, h.account.HandleRemove)
	api.Post("/unlink", middleware.RequireAPISessionAuth, h.account.HandleUnlink)
	api.Post("/link", middleware.RequireAPISessionAuth, h.account.HandleLink)
}
