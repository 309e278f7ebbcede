package flash

import (
	"github.com/gofiber/fiber/v2"
	fiberflash "github.com/sujit-baniya/flash"
)

// Message types understood by the layout
const (
	TypeError   = "error"
	TypeSuccess = "success"
	TypeInfo    = "info"
)

// Error stores an error message for the next request.
func Error(c *fiber.Ctx, message string) *fiber.Ctx {
	return fiberflash.WithError(c, fiber.Map{"type": TypeError, "message": message})
}

// Success stores a success message for the next request.
func Success(c *fiber.Ctx, message string) *fiber.Ctx {
	return fiberflash.WithSuccess(c, fiber.Map{"type": TypeSuccess, "message": message})
}

func Info(c *fiber.Ctx, message string) *fiber.Ctx {
	return fiberflash.WithInfo(c, fiber.Map{"type": TypeInfo, "message": message})
}

// Get returns the pending message and clears it. It returns nil when there is none.
func Get(c *fiber.Ctx) fiber.Map {
	data := fiberflash.Get(c)
	if len(data) == 0 {
		return nil
	}
	if _, ok := data["message"]; !ok {
		return nil
	}
	return data
}
