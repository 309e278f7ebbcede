package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/HarooHub/internal/pkg/session"
)

// ReservedSegments are first path segments that are never remembered as a post-login destination.
var ReservedSegments = map[string]struct{}{
	"auth":        {},
	"login":       {},
	"logout":      {},
	"signup":      {},
	"favicon.ico": {},
	"static":      {},
	"assets":      {},
	"api":         {},
	"health":      {},
	"metrics":     {},
	"docs":        {},
}

// ShouldTrack reports whether a request should become the session's return path.
// Only page views count; the landing page is left to the default destination.
func ShouldTrack(method, path string) bool {
	if method != fiber.MethodGet {
		return false
	}
	segment := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(segment, '/'); i >= 0 {
		segment = segment[:i]
	}
	if segment == "" {
		return false
	}
	_, reserved := ReservedSegments[strings.ToLower(segment)]
	return !reserved
}

// ReturnPath remembers the requested path. Failures are logged and never fail the request.
func ReturnPath(m *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if ShouldTrack(c.Method(), path) && session.IsLocalPath(path) {
			if err := m.SetReturnTo(c, path); err != nil {
				fiberlog.Warnf("[Session] Could not store return path: %v", err)
			}
		}
		return c.Next()
	}
}
