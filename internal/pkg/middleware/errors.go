package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/HarooHub/internal/pkg/autherr"
)

// ErrorHandler is the application wide fiber error handler. It never exposes internal details:
// a CSRF failure only says "Forbidden", a store outage a generic 503.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	switch {
	case errors.Is(err, autherr.ErrForbidden):
		code, message = fiber.StatusForbidden, "Forbidden"
	case autherr.IsStoreUnavailable(err):
		fiberlog.Errorf("[HTTP] %s %s: %v", c.Method(), c.Path(), err)
		code, message = fiber.StatusServiceUnavailable, "Service Unavailable"
	case errors.As(err, &fe):
		code, message = fe.Code, fe.Message
	default:
		fiberlog.Errorf("[HTTP] %s %s: %v", c.Method(), c.Path(), err)
	}

	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(code).JSON(fiber.Map{
			"error":   strings.ToLower(strings.ReplaceAll(message, " ", "_")),
			"message": message,
		})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(code).SendString(message)
}
