package router

import (
	"net/http"

	"github.com/ManuelReschke/HarooHub/app/controllers"
	"github.com/ManuelReschke/HarooHub/internal/pkg/accounts"
	"github.com/ManuelReschke/HarooHub/internal/pkg/oauth"
	"github.com/ManuelReschke/HarooHub/internal/pkg/session"
)

// Dependencies are the services the routes are built from.
type Dependencies struct {
	Sessions  *session.Manager
	Accounts  *accounts.Service
	Engine    *accounts.Engine
	Handshake oauth.Handshake
	// Outcomes is optional; without it nothing is counted and /metrics/auth answers 404.
	Outcomes controllers.OutcomeStore
	// Health checks by name, reported on /health.
	Health map[string]controllers.Pinger
	// Prometheus serves /metrics/prometheus when set.
	Prometheus http.Handler
	// MetricsUsers protects /metrics. No users means the metrics routes are not registered.
	MetricsUsers map[string]string
	// APIRateLimit is the number of API requests per minute and client. Zero disables the limiter.
	APIRateLimit int
	// CORSOrigins is the allowed origin list for the JSON API, e.g. "https://app.example.com".
	CORSOrigins string
}
