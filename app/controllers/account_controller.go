package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/HarooHub/app/models"
	"github.com/ManuelReschke/HarooHub/internal/pkg/accounts"
	"github.com/ManuelReschke/HarooHub/internal/pkg/autherr"
	"github.com/ManuelReschke/HarooHub/internal/pkg/constants"
	"github.com/ManuelReschke/HarooHub/internal/pkg/flash"
	"github.com/ManuelReschke/HarooHub/internal/pkg/session"
	"github.com/ManuelReschke/HarooHub/internal/pkg/utils"
)

// AccountController serves the account page of the signed in user
type AccountController struct {
	sessions *session.Manager
	accounts *accounts.Service
}

func NewAccountController(sessions *session.Manager, svc *accounts.Service) *AccountController {
	return &AccountController{sessions: sessions, accounts: svc}
}

// providerLink is one row of the provider list on the account page
type providerLink struct {
	Name   string
	Label  string
	Linked bool
}

func providerLinks(view *accounts.AccountView) []providerLink {
	linked := make(map[string]bool, len(view.Providers))
	for _, p := range view.Providers {
		linked[p] = true
	}
	links := make([]providerLink, 0, len(models.Providers()))
	for _, p := range models.Providers() {
		links = append(links, providerLink{Name: p.String(), Label: p.Label(), Linked: linked[p.String()]})
	}
	return links
}

// signOutMissing handles a session whose account no longer exists.
func (ac *AccountController) signOutMissing(c *fiber.Ctx) error {
	if err := ac.sessions.Destroy(c); err != nil {
		return err
	}
	return flash.Error(c, "Please sign in again.").Redirect(constants.LoginRoute, fiber.StatusSeeOther)
}

func (ac *AccountController) HandleAccount(c *fiber.Ctx) error {
	view, err := ac.accounts.ReadAccount(c.UserContext(), ac.sessions.AccountID(c))
	if errors.Is(err, autherr.ErrAccountNotFound) {
		return ac.signOutMissing(c)
	}
	if err != nil {
		return err
	}
	return render(c, "account", "Account", fiber.Map{
		"Account":   view,
		"Providers": providerLinks(view),
		"AvatarURL": utils.AvatarURL(view.Email, 96),
	})
}

// HandlePassword sets or changes the local password.
func (ac *AccountController) HandlePassword(c *fiber.Ctx) error {
	next := c.FormValue("new_password")
	if next != c.FormValue("new_password_confirm") {
		return flash.Error(c, "The new passwords do not match.").Redirect(constants.AccountRoute, fiber.StatusSeeOther)
	}
	err := ac.accounts.ChangePassword(c.UserContext(), ac.sessions.AccountID(c), c.FormValue("current_password"), next)
	if errors.Is(err, autherr.ErrAccountNotFound) {
		return ac.signOutMissing(c)
	}
	if err != nil {
		return flashAndRedirect(c, err, constants.AccountRoute)
	}
	return flash.Success(c, "Your password was saved.").Redirect(constants.AccountRoute, fiber.StatusSeeOther)
}

// HandleDelete removes the account with all identities and ends the session.
func (ac *AccountController) HandleDelete(c *fiber.Ctx) error {
	err := ac.accounts.RemoveAccount(c.UserContext(), ac.sessions.AccountID(c))
	if err != nil && !errors.Is(err, autherr.ErrAccountNotFound) {
		return flashAndRedirect(c, err, constants.AccountRoute)
	}
	if err := ac.sessions.Destroy(c); err != nil {
		return err
	}
	return flash.Info(c, "Your account was deleted.").Redirect(constants.HomeRoute, fiber.StatusSeeOther)
}

func (ac *AccountController) HandleUnlink(c *fiber.Ctx) error {
	provider, err := models.ParseProvider(c.Params("provider"))
	if err != nil {
		return flashAndRedirect(c, err, constants.AccountRoute)
	}
	_, err = ac.accounts.UnlinkAuth(c.UserContext(), ac.sessions.AccountID(c), provider)
	if err != nil {
		return flashAndRedirect(c, err, constants.AccountRoute)
	}
	return flash.Success(c, fmt.Sprintf("%s was unlinked from your account.", provider.Label())).
		Redirect(constants.AccountRoute, fiber.StatusSeeOther)
}
