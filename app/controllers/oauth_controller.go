package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/HarooHub/app/models"
	"github.com/ManuelReschke/HarooHub/internal/pkg/accounts"
	"github.com/ManuelReschke/HarooHub/internal/pkg/autherr"
	"github.com/ManuelReschke/HarooHub/internal/pkg/constants"
	"github.com/ManuelReschke/HarooHub/internal/pkg/flash"
	"github.com/ManuelReschke/HarooHub/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/HarooHub/internal/pkg/oauth"
	"github.com/ManuelReschke/HarooHub/internal/pkg/session"
)

// OAuthController runs the provider redirect flow
type OAuthController struct {
	sessions  *session.Manager
	engine    *accounts.Engine
	handshake oauth.Handshake
	outcomes  OutcomeStore
}

func NewOAuthController(sessions *session.Manager, engine *accounts.Engine, handshake oauth.Handshake, outcomes OutcomeStore) *OAuthController {
	return &OAuthController{sessions: sessions, engine: engine, handshake: handshake, outcomes: outcomes}
}

// HandleBegin redirects to the provider.
func (oc *OAuthController) HandleBegin(c *fiber.Ctx) error {
	err := oc.handshake.Begin(c)
	if err == nil {
		return nil
	}
	if !errors.Is(err, autherr.ErrUnknownProvider) {
		err = &autherr.AuthProviderError{Provider: c.Params("provider"), Err: err}
	}
	fiberlog.Warnf("[OAuth] Begin %s failed: %v", c.Params("provider"), err)
	return flashAndRedirect(c, err, oc.failureTarget(c))
}

// HandleCallback completes the provider flow and hands the verified identity to the
// reconciliation engine, which decides between login, link and signup.
func (oc *OAuthController) HandleCallback(c *fiber.Ctx) error {
	// only known providers reach the outcome counters
	provider, err := models.ParseProvider(c.Params("provider"))
	if err != nil {
		return flashAndRedirect(c, err, oc.failureTarget(c))
	}

	in, err := oc.handshake.Complete(c)
	if err != nil {
		record(oc.outcomes, c, provider.String(), counter.OutcomeFailed)
		fiberlog.Warnf("[OAuth] Callback %s failed: %v", provider, err)
		return flashAndRedirect(c, err, oc.failureTarget(c))
	}

	res, err := oc.engine.Reconcile(c.UserContext(), oc.sessions.Binder(c), in)
	if err != nil {
		record(oc.outcomes, c, provider.String(), counter.OutcomeFailed)
		return flashAndRedirect(c, err, oc.failureTarget(c))
	}
	record(oc.outcomes, c, provider.String(), string(res.Outcome))

	dest, err := oc.sessions.ConsumeReturnTo(c, constants.AccountRoute)
	if err != nil {
		return err
	}
	return flash.Success(c, outcomeMessage(res.Outcome, in.Provider)).Redirect(dest, fiber.StatusSeeOther)
}

// failureTarget keeps signed in users on their account page.
func (oc *OAuthController) failureTarget(c *fiber.Ctx) string {
	if oc.sessions.AccountID(c) != 0 {
		return constants.AccountRoute
	}
	return constants.LoginRoute
}

func outcomeMessage(outcome accounts.Outcome, provider models.Provider) string {
	switch outcome {
	case accounts.OutcomeSignup:
		return fmt.Sprintf("Welcome! Your account was created with %s.", provider.Label())
	case accounts.OutcomeLinked:
		return fmt.Sprintf("%s is now linked to your account.", provider.Label())
	default:
		return fmt.Sprintf("Signed in with %s.", provider.Label())
	}
}
