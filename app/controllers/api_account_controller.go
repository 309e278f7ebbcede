package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/HarooHub/app/models"
	"github.com/ManuelReschke/HarooHub/internal/pkg/accounts"
	"github.com/ManuelReschke/HarooHub/internal/pkg/autherr"
	"github.com/ManuelReschke/HarooHub/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/HarooHub/internal/pkg/session"
)

// APIAccountController implements the JSON account API under /api/account.
// All routes are POST and CSRF exempt; every route except create and access needs a session.
type APIAccountController struct {
	sessions *session.Manager
	accounts *accounts.Service
	outcomes OutcomeStore
}

func NewAPIAccountController(sessions *session.Manager, svc *accounts.Service, outcomes OutcomeStore) *APIAccountController {
	return &APIAccountController{sessions: sessions, accounts: svc, outcomes: outcomes}
}

type credentialsRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type providerRequest struct {
	Provider string `json:"provider" form:"provider"`
	Token    string `json:"token" form:"token"`
}

// parseBody decodes the request body into out. An empty body leaves out untouched.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("%w: malformed request body", autherr.ErrValidation)
	}
	return nil
}

func accountResponse(c *fiber.Ctx, status int, view *accounts.AccountView) error {
	return c.Status(status).JSON(fiber.Map{"account": view})
}

// HandleCreate signs up a local account and starts a session for it.
func (ac *APIAccountController) HandleCreate(c *fiber.Ctx) error {
	var in accounts.CreateAccountInput
	if err := parseBody(c, &in); err != nil {
		return apiError(c, err)
	}
	account, err := ac.accounts.CreateAccount(c.UserContext(), in)
	if err != nil {
		return apiError(c, err)
	}
	if err := ac.sessions.Authenticate(c, account.ID); err != nil {
		return err
	}
	record(ac.outcomes, c, counter.OutcomeLocal, string(accounts.OutcomeSignup))
	return accountResponse(c, fiber.StatusCreated, accounts.NewView(account, nil))
}

func (ac *APIAccountController) HandleRead(c *fiber.Ctx) error {
	view, err := ac.accounts.ReadAccount(c.UserContext(), ac.sessions.AccountID(c))
	if err != nil {
		return apiError(c, err)
	}
	return accountResponse(c, fiber.StatusOK, view)
}

// HandleAccess returns the account of the session. Without a session the client signs in
// with email and password first.
func (ac *APIAccountController) HandleAccess(c *fiber.Ctx) error {
	accountID := ac.sessions.AccountID(c)
	if accountID == 0 {
		var in credentialsRequest
		if err := parseBody(c, &in); err != nil {
			return apiError(c, err)
		}
		if in.Email == "" || in.Password == "" {
			return apiError(c, autherr.ErrUnauthorized)
		}
		account, err := ac.accounts.Authenticate(c.UserContext(), in.Email, in.Password)
		if err != nil {
			record(ac.outcomes, c, counter.OutcomeLocal, counter.OutcomeFailed)
			return apiError(c, err)
		}
		if err := ac.sessions.Authenticate(c, account.ID); err != nil {
			return err
		}
		record(ac.outcomes, c, counter.OutcomeLocal, string(accounts.OutcomeLogin))
		accountID = account.ID
	}

	view, err := ac.accounts.AccessAccount(c.UserContext(), accountID)
	if err != nil {
		return apiError(c, err)
	}
	return accountResponse(c, fiber.StatusOK, view)
}

func (ac *APIAccountController) HandleUpdate(c *fiber.Ctx) error {
	var in accounts.UpdateAccountInput
	if err := parseBody(c, &in); err != nil {
		return apiError(c, err)
	}
	view, err := ac.accounts.UpdateAccount(c.UserContext(), ac.sessions.AccountID(c), in)
	if err != nil {
		return apiError(c, err)
	}
	return accountResponse(c, fiber.StatusOK, view)
}

// HandleDismiss deactivates the account and ends the session.
func (ac *APIAccountController) HandleDismiss(c *fiber.Ctx) error {
	view, err := ac.accounts.DismissAccount(c.UserContext(), ac.sessions.AccountID(c))
	if err != nil {
		return apiError(c, err)
	}
	if err := ac.sessions.Destroy(c); err != nil {
		return err
	}
	return accountResponse(c, fiber.StatusOK, view)
}

// HandleRemove deletes the account with its identities and ends the session.
func (ac *APIAccountController) HandleRemove(c *fiber.Ctx) error {
	if err := ac.accounts.RemoveAccount(c.UserContext(), ac.sessions.AccountID(c)); err != nil {
		return apiError(c, err)
	}
	if err := ac.sessions.Destroy(c); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"removed": true})
}

func (ac *APIAccountController) HandleUnlink(c *fiber.Ctx) error {
	var in providerRequest
	if err := parseBody(c, &in); err != nil {
		return apiError(c, err)
	}
	provider, err := models.ParseProvider(in.Provider)
	if err != nil {
		return apiError(c, err)
	}
	view, err := ac.accounts.UnlinkAuth(c.UserContext(), ac.sessions.AccountID(c), provider)
	if err != nil {
		return apiError(c, err)
	}
	return accountResponse(c, fiber.StatusOK, view)
}

// HandleLink links the identity behind a provider access token to the account.
func (ac *APIAccountController) HandleLink(c *fiber.Ctx) error {
	var in providerRequest
	if err := parseBody(c, &in); err != nil {
		return apiError(c, err)
	}
	provider, err := models.ParseProvider(in.Provider)
	if err != nil {
		return apiError(c, err)
	}
	view, err := ac.accounts.LinkAuth(c.UserContext(), ac.sessions.AccountID(c), provider, in.Token)
	if err != nil {
		record(ac.outcomes, c, provider.String(), counter.OutcomeFailed)
		return apiError(c, err)
	}
	record(ac.outcomes, c, provider.String(), string(accounts.OutcomeLinked))
	return accountResponse(c, fiber.StatusOK, view)
}
