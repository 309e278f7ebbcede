package controllers

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/HarooHub/app/models"
)

const healthTimeout = 2 * time.Second

// Pinger checks one backing service.
type Pinger func(ctx context.Context) error

// MainController serves the landing page and the operational endpoints
type MainController struct {
	checks   map[string]Pinger
	outcomes OutcomeStore
}

func NewMainController(checks map[string]Pinger, outcomes OutcomeStore) *MainController {
	return &MainController{checks: checks, outcomes: outcomes}
}

func (mc *MainController) HandleIndex(c *fiber.Ctx) error {
	return render(c, "index", "Home", fiber.Map{"Providers": models.Providers()})
}

// HandleHealth pings every backing service. Any failure turns the response into a 503.
func (mc *MainController) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	names := make([]string, 0, len(mc.checks))
	for name := range mc.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := fiber.StatusOK
	results := make(fiber.Map, len(names))
	for _, name := range names {
		if err := mc.checks[name](ctx); err != nil {
			fiberlog.Warnf("[Health] %s: %v", name, err)
			results[name] = "down"
			status = fiber.StatusServiceUnavailable
			continue
		}
		results[name] = "up"
	}

	overall := "ok"
	if status != fiber.StatusOK {
		overall = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{"status": overall, "checks": results})
}

// HandleAuthOutcomes returns the sign in counters.
func (mc *MainController) HandleAuthOutcomes(c *fiber.Ctx) error {
	if mc.outcomes == nil {
		return fiber.NewError(fiber.StatusNotFound, "Not Found")
	}
	entries, err := mc.outcomes.Snapshot(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"outcomes": entries})
}
