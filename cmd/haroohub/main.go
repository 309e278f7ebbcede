package main

import (
	"fmt"
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ManuelReschke/HarooHub/app/controllers"
	"github.com/ManuelReschke/HarooHub/app/repository"
	"github.com/ManuelReschke/HarooHub/internal/pkg/accounts"
	"github.com/ManuelReschke/HarooHub/internal/pkg/cache"
	"github.com/ManuelReschke/HarooHub/internal/pkg/database"
	"github.com/ManuelReschke/HarooHub/internal/pkg/env"
	"github.com/ManuelReschke/HarooHub/internal/pkg/metrics"
	"github.com/ManuelReschke/HarooHub/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/HarooHub/internal/pkg/middleware"
	"github.com/ManuelReschke/HarooHub/internal/pkg/oauth"
	"github.com/ManuelReschke/HarooHub/internal/pkg/router"
	"github.com/ManuelReschke/HarooHub/internal/pkg/session"
	"github.com/ManuelReschke/HarooHub/views"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	oauth.Setup()

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/haroohub to project root
		"../../../", // Fallback
	}

	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public/docs/v1/openapi.yml"); err == nil {
			basePath = path
			break
		}
	}

	app := fiber.New(fiber.Config{
		Views:        views.Engine(),
		ErrorHandler: middleware.ErrorHandler,
		AppName:      "HarooHub",
	})

	// ignore favicon requests before a session is created for them
	app.Use(favicon.New())

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// SWAGGER / OPENAPI
	if basePath != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: basePath + "public/docs/v1/openapi.yml",
			Path:     "v1",
			Title:    "HarooHub Account API",
		}))
	} else {
		log.Warn("[HTTP] openapi.yml not found, API docs are disabled")
	}

	// ROUTER
	router.InstallRouter(app, dependencies())

	return app
}

func dependencies() router.Dependencies {
	store := repository.NewFactory(database.GetDB())
	handshake := oauth.NewGothHandshake()
	outcomes := metrics.NewOutcomes(
		counter.NewAuthOutcomes(cache.GetClient()),
		metrics.NewCollector(prometheus.DefaultRegisterer),
	)

	metricsUsers := map[string]string{}
	if password := env.GetEnv("METRICS_PASSWORD", ""); password != "" {
		metricsUsers[env.GetEnv("METRICS_USER", "admin")] = password
	} else {
		log.Warn("[HTTP] METRICS_PASSWORD is not set, /metrics is disabled")
	}

	return router.Dependencies{
		Sessions:  session.NewManager(session.NewSessionStore(session.NewRedisStorage())),
		Accounts:  accounts.NewService(store, handshake),
		Engine:    accounts.NewEngine(store),
		Handshake: handshake,
		Outcomes:  outcomes,
		Health: map[string]controllers.Pinger{
			"database": database.Ping,
			"cache":    cache.Ping,
		},
		Prometheus:   metrics.Handler(prometheus.DefaultGatherer),
		MetricsUsers: metricsUsers,
		APIRateLimit: env.GetInt("API_RATE_LIMIT", 60),
		CORSOrigins:  env.GetEnv("CORS_ALLOW_ORIGINS", ""),
	}
}
