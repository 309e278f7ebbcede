package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/ManuelReschke/HarooHub/internal/pkg/autherr"
	"github.com/ManuelReschke/HarooHub/internal/pkg/env"
	"github.com/ManuelReschke/HarooHub/internal/pkg/session"
)

const (
	// CSRFFormField is the hidden form field carrying the token
	CSRFFormField = "_csrf"
	// CSRFHeader is accepted for scripted clients
	CSRFHeader = "X-CSRF-Token"
	// CSRFCookie is the double submit cookie set by the middleware
	CSRFCookie = "csrf_"
	// CSRFContextKey holds the token in fiber locals for templates
	CSRFContextKey = "csrf"
)

// CSRFExemptPaths are the machine-to-machine endpoints that are called without a browser token.
// Matching is exact, there is no prefix or pattern matching.
var CSRFExemptPaths = map[string]struct{}{
	"/api/account/create":  {},
	"/api/account/read":    {},
	"/api/account/dismiss": {},
	"/api/account/update":  {},
	"/api/account/remove":  {},
	"/api/account/link":    {},
	"/api/account/unlink":  {},
	"/api/account/access":  {},
}

// IsCSRFExempt reports whether path skips token validation.
func IsCSRFExempt(path string) bool {
	_, ok := CSRFExemptPaths[path]
	return ok
}

var (
	fromForm   = csrf.CsrfFromForm(CSRFFormField)
	fromHeader = csrf.CsrfFromHeader(CSRFHeader)
)

func extractToken(c *fiber.Ctx) (string, error) {
	if token, err := fromForm(c); err == nil {
		return token, nil
	}
	return fromHeader(c)
}

// NewCSRF validates the session bound token on unsafe methods. Safe methods only issue or
// refresh the token.
func NewCSRF(m *session.Manager) fiber.Handler {
	return csrf.New(csrf.Config{
		Next: func(c *fiber.Ctx) bool {
			return IsCSRFExempt(c.Path())
		},
		KeyLookup:      "form:" + CSRFFormField,
		Extractor:      extractToken,
		CookieName:     CSRFCookie,
		CookieSameSite: "Lax",
		CookieSecure:   !env.IsDev(),
		CookieHTTPOnly: true,
		Expiration:     env.GetDuration("SESSION_TTL", session.DefaultTTL),
		Session:        m.Store(),
		SessionKey:     session.KeyCSRF,
		ContextKey:     CSRFContextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return autherr.ErrForbidden
		},
	})
}

// CSRFToken returns the token issued for this request.
func CSRFToken(c *fiber.Ctx) string {
	token, _ := c.Locals(CSRFContextKey).(string)
	return token
}
