package session

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/HarooHub/internal/pkg/cache"
	"github.com/ManuelReschke/HarooHub/internal/pkg/env"
)

const (
	// CookieName carries the opaque session id.
	CookieName = "session_id"

	// DefaultTTL applies when SESSION_TTL is not set.
	DefaultTTL = 24 * time.Hour

	redisSessionDB = 1
)

// RedisConfig derives storage settings from the shared cache client so sessions live on the
// same redis server in a separate database.
func RedisConfig(database int) redis.Config {
	host := "localhost"
	port := 6379
	username := ""
	password := env.GetEnv("CACHE_PASSWORD", "")
	if cacheClient := cache.GetClient(); cacheClient != nil {
		opts := cacheClient.Options()
		if h, p, err := net.SplitHostPort(opts.Addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		username = opts.Username
		// Prefer password from the underlying client if present
		if opts.Password != "" {
			password = opts.Password
		}
	}

	return redis.Config{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		Database: database,
		Reset:    false,
	}
}

// NewRedisStorage opens the redis database that holds session records.
func NewRedisStorage() fiber.Storage {
	return redis.New(RedisConfig(redisSessionDB))
}

// NewSessionStore builds the session store. A nil storage keeps sessions in memory.
func NewSessionStore(storage fiber.Storage) *session.Store {
	return session.New(session.Config{
		Storage:        storage,
		CookieHTTPOnly: true,
		CookieSecure:   !env.IsDev(),
		CookieSameSite: "Lax",
		Expiration:     env.GetDuration("SESSION_TTL", DefaultTTL),
		KeyLookup:      "cookie:" + CookieName,
	})
}
