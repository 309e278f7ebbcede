package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"github.com/ManuelReschke/HarooHub/app/controllers"
)

type HttpRouter struct {
	deps    Dependencies
	main    *controllers.MainController
	auth    *controllers.AuthController
	account *controllers.AccountController
	oauth   *controllers.OAuthController
}

func NewHttpRouter(deps Dependencies) *HttpRouter {
	return &HttpRouter{
		deps:    deps,
		main:    controllers.NewMainController(deps.Health, deps.Outcomes),
		auth:    controllers.NewAuthController(deps.Sessions, deps.Accounts, deps.Outcomes),
		account: controllers.NewAccountController(deps.Sessions, deps.Accounts),
		oauth:   controllers.NewOAuthController(deps.Sessions, deps.Engine, deps.Handshake, deps.Outcomes),
	}
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	h.registerPublicRoutes(app)
	h.registerAccountRoutes(app)
	h.registerMetricsRoutes(app)
}

func (h HttpRouter) registerMetricsRoutes(app *fiber.App) {
	if len(h.deps.MetricsUsers) == 0 {
		return
	}
	metrics := app.Group("/metrics", basicauth.New(basicauth.Config{
		Users: h.deps.MetricsUsers,
	}))
	metrics.Get("/", monitor.New(monitor.Config{Title: "HarooHub Metrics"}))
	metrics.Get("/auth", h.main.HandleAuthOutcomes)
	if h.deps.Prometheus != nil {
		metrics.Get("/prometheus", adaptor.HTTPHandler(h.deps.Prometheus))
	}
}
