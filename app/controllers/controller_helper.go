package controllers

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/HarooHub/internal/pkg/autherr"
	"github.com/ManuelReschke/HarooHub/internal/pkg/flash"
	"github.com/ManuelReschke/HarooHub/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/HarooHub/internal/pkg/middleware"
	"github.com/ManuelReschke/HarooHub/internal/pkg/usercontext"
)

const layoutMain = "layouts/main"

// OutcomeStore counts sign in results. A nil store disables counting.
type OutcomeStore interface {
	Record(ctx context.Context, provider, outcome string) error
	Snapshot(ctx context.Context) ([]counter.Entry, error)
}

func record(store OutcomeStore, c *fiber.Ctx, provider, outcome string) {
	if store == nil {
		return
	}
	if err := store.Record(c.UserContext(), provider, outcome); err != nil {
		fiberlog.Warnf("[Metrics] Could not record %s:%s: %v", provider, outcome, err)
	}
}

// render adds the values every page needs and renders view inside the main layout.
func render(c *fiber.Ctx, view, title string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	userCtx := usercontext.GetUserContext(c)
	data["Title"] = fmt.Sprintf("HarooHub | %s", title)
	data["User"] = userCtx
	data["CSRFField"] = middleware.CSRFFormField
	data["CSRFToken"] = userCtx.CSRFToken
	data["Flash"] = flash.Get(c)
	return c.Render(view, data, layoutMain)
}

// flashAndRedirect turns err into a flash message and sends the client to "to".
// Store outages are not recoverable here and go to the error handler.
func flashAndRedirect(c *fiber.Ctx, err error, to string) error {
	if autherr.IsStoreUnavailable(err) {
		return err
	}
	if autherr.Code(err) == "internal_server_error" {
		fiberlog.Errorf("[HTTP] %s %s: %v", c.Method(), c.Path(), err)
	}
	return flash.Error(c, autherr.Message(err)).Redirect(to, fiber.StatusSeeOther)
}

// apiError writes the JSON error body for err.
func apiError(c *fiber.Ctx, err error) error {
	if autherr.IsStoreUnavailable(err) {
		return err
	}
	status := autherr.Status(err)
	if status == fiber.StatusInternalServerError {
		fiberlog.Errorf("[API] %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error":   autherr.Code(err),
		"message": autherr.Message(err),
	})
}
