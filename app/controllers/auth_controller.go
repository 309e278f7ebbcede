package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/HarooHub/internal/pkg/accounts"
	"github.com/ManuelReschke/HarooHub/internal/pkg/constants"
	"github.com/ManuelReschke/HarooHub/internal/pkg/flash"
	"github.com/ManuelReschke/HarooHub/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/HarooHub/internal/pkg/session"
	"github.com/ManuelReschke/HarooHub/internal/pkg/usercontext"
)

// AuthController handles local sign up, login and logout
type AuthController struct {
	sessions *session.Manager
	accounts *accounts.Service
	outcomes OutcomeStore
}

func NewAuthController(sessions *session.Manager, svc *accounts.Service, outcomes OutcomeStore) *AuthController {
	return &AuthController{sessions: sessions, accounts: svc, outcomes: outcomes}
}

func (ac *AuthController) HandleLoginPage(c *fiber.Ctx) error {
	if usercontext.IsLoggedIn(c) {
		return c.Redirect(constants.AccountRoute, fiber.StatusSeeOther)
	}
	return render(c, "login", "Login", fiber.Map{"Email": c.Query("email")})
}

// HandleLogin checks the credentials and sends the user back where they came from.
func (ac *AuthController) HandleLogin(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.FormValue("email"))
	account, err := ac.accounts.Authenticate(c.UserContext(), email, c.FormValue("password"))
	if err != nil {
		record(ac.outcomes, c, counter.OutcomeLocal, counter.OutcomeFailed)
		return flashAndRedirect(c, err, constants.LoginRoute)
	}
	if err := ac.sessions.Authenticate(c, account.ID); err != nil {
		return err
	}
	record(ac.outcomes, c, counter.OutcomeLocal, string(accounts.OutcomeLogin))

	dest, err := ac.sessions.ConsumeReturnTo(c, constants.AccountRoute)
	if err != nil {
		return err
	}
	return flash.Success(c, "Welcome back!").Redirect(dest, fiber.StatusSeeOther)
}

func (ac *AuthController) HandleSignupPage(c *fiber.Ctx) error {
	if usercontext.IsLoggedIn(c) {
		return c.Redirect(constants.AccountRoute, fiber.StatusSeeOther)
	}
	return render(c, "signup", "Sign up", nil)
}

// HandleSignup creates a local account and signs it in.
func (ac *AuthController) HandleSignup(c *fiber.Ctx) error {
	in := accounts.CreateAccountInput{
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
		Name:     c.FormValue("name"),
	}
	if in.Password != c.FormValue("password_confirm") {
		return flash.Error(c, "The passwords do not match.").Redirect(constants.SignupRoute, fiber.StatusSeeOther)
	}

	account, err := ac.accounts.CreateAccount(c.UserContext(), in)
	if err != nil {
		return flashAndRedirect(c, err, constants.SignupRoute)
	}
	if err := ac.sessions.Authenticate(c, account.ID); err != nil {
		return err
	}
	record(ac.outcomes, c, counter.OutcomeLocal, string(accounts.OutcomeSignup))

	dest, err := ac.sessions.ConsumeReturnTo(c, constants.AccountRoute)
	if err != nil {
		return err
	}
	return flash.Success(c, "Your account was created.").Redirect(dest, fiber.StatusSeeOther)
}

// HandleLogout destroys the session. It is reachable by GET and POST.
func (ac *AuthController) HandleLogout(c *fiber.Ctx) error {
	if err := ac.sessions.Destroy(c); err != nil {
		return err
	}
	fiberlog.Debugf("[Auth] Logged out account %d", usercontext.GetAccountID(c))
	return flash.Info(c, "You have been logged out.").Redirect(constants.HomeRoute, fiber.StatusSeeOther)
}
