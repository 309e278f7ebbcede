package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"

	"github.com/ManuelReschke/HarooHub/internal/pkg/middleware"
)

// Router registers a group of routes on the app
type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter installs response compression, the request pipeline and then every route. The
// pipeline must come before the routes so all of them see a resolved session and a checked CSRF token.
func InstallRouter(app *fiber.App, deps Dependencies) {
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
	middleware.Install(app, deps.Sessions)
	setup(app, NewHttpRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
