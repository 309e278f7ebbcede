package usercontext

import "github.com/gofiber/fiber/v2"

// LocalsKey is where the middleware stores the context
const LocalsKey = "USER_CONTEXT"

// UserContext represents the complete user context for a request
type UserContext struct {
	AccountID  uint   `json:"account_id"`
	SessionID  string `json:"-"`
	IsLoggedIn bool   `json:"is_logged_in"`
	CSRFToken  string `json:"-"`
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx, ok := c.Locals(LocalsKey).(UserContext); ok {
		return ctx
	}
	return UserContext{IsLoggedIn: false}
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// GetAccountID returns the current account id, or 0 if not logged in
func GetAccountID(c *fiber.Ctx) uint {
	return GetUserContext(c).AccountID
}
