package oauth

import (
	"strings"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/session"
	redisstorage "github.com/gofiber/storage/redis"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/facebook"
	"github.com/markbates/goth/providers/google"
	"github.com/markbates/goth/providers/twitter"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/ManuelReschke/HarooHub/app/models"
	"github.com/ManuelReschke/HarooHub/internal/pkg/env"
	appsession "github.com/ManuelReschke/HarooHub/internal/pkg/session"
)

const redisStateDB = 2

// CallbackURL is where a provider sends the user back to.
func CallbackURL(provider models.Provider) string {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}
	return base + "/auth/" + provider.String() + "/callback"
}

// Setup initializes Goth providers and session store based on environment variables.
// It is safe to call multiple times; providers will just be re-registered.
func Setup() {
	for _, p := range models.Providers() {
		if env.GetEnv(strings.ToUpper(p.String())+"_KEY", "") == "" {
			fiberlog.Warnf("[OAuth] %s is not configured, sign in with it will fail", p)
		}
	}

	goth.UseProviders(
		twitter.New(
			env.GetEnv("TWITTER_KEY", ""),
			env.GetEnv("TWITTER_SECRET", ""),
			CallbackURL(models.ProviderTwitter),
		),
		facebook.New(
			env.GetEnv("FACEBOOK_KEY", ""),
			env.GetEnv("FACEBOOK_SECRET", ""),
			CallbackURL(models.ProviderFacebook),
			"email", "public_profile",
		),
		google.New(
			env.GetEnv("GOOGLE_KEY", ""),
			env.GetEnv("GOOGLE_SECRET", ""),
			CallbackURL(models.ProviderGoogle),
			"email", "profile",
		),
	)

	// OAuth state via Redis, using same connection as app sessions (separate DB)
	gothfiber.SessionStore = session.New(session.Config{
		Storage:        redisstorage.New(appsession.RedisConfig(redisStateDB)),
		KeyLookup:      "cookie:" + gothic.SessionName,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   !env.IsDev(),
		Expiration:     time.Hour,
	})
}
