package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/HarooHub/app/models"
	"github.com/ManuelReschke/HarooHub/app/repository"
	"github.com/ManuelReschke/HarooHub/internal/pkg/autherr"
	"github.com/ManuelReschke/HarooHub/internal/pkg/utils"
)

// Engine decides what a verified provider login means for the current session:
// log into the identity's owner, link to the signed-in account or sign up a new account.
type Engine struct {
	store repository.Store
	now   func() time.Time
}

func NewEngine(store repository.Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// Reconcile applies a verified identity to the session.
//
// A unique index violation means a concurrent request created the same identity first. The
// decision is then taken again once, so the loser falls back to logging into the winner's account.
func (e *Engine) Reconcile(ctx context.Context, sess SessionBinder, in *VerifiedIdentity) (*Result, error) {
	if in == nil || in.ProviderUserID == "" {
		return nil, fmt.Errorf("%w: empty provider identity", autherr.ErrValidation)
	}

	res, err := e.decide(ctx, sess.AccountID(), in)
	if errors.Is(err, repository.ErrDuplicate) {
		fiberlog.Infof("[Accounts] Concurrent insert for %s identity, retrying", in.Provider)
		res, err = e.decide(ctx, sess.AccountID(), in)
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, autherr.ErrDuplicateProvider
	}
	if err != nil {
		return nil, err
	}

	if res.Outcome != OutcomeLinked {
		if err := sess.Authenticate(res.Account.ID); err != nil {
			return nil, err
		}
	}

	fiberlog.Infof("[Accounts] %s via %s for account %s", res.Outcome, in.Provider, res.Account.UUID)
	return res, nil
}

func (e *Engine) decide(ctx context.Context, sessionAccountID uint, in *VerifiedIdentity) (*Result, error) {
	var res *Result
	err := e.store.Atomic(ctx, func(repos *repository.Repositories) error {
		identity, err := repos.Identity.GetByProviderUserID(ctx, in.Provider, in.ProviderUserID)
		switch {
		case err == nil:
			res, err = e.login(ctx, repos, identity, in)
			return err
		case !errors.Is(err, repository.ErrNotFound):
			return err
		case sessionAccountID != 0:
			account, err := loadAccount(ctx, repos, sessionAccountID)
			if err != nil {
				return err
			}
			identity, err := attach(ctx, repos, account, in, autherr.ErrDuplicateProvider)
			if err != nil {
				return err
			}
			res = &Result{Outcome: OutcomeLinked, Account: account, Identity: identity}
			return nil
		default:
			res, err = e.signup(ctx, repos, in)
			return err
		}
	})
	return res, err
}

func (e *Engine) login(ctx context.Context, repos *repository.Repositories, identity *models.Identity, in *VerifiedIdentity) (*Result, error) {
	account, err := loadAccount(ctx, repos, identity.AccountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		return nil, autherr.ErrAccountDismissed
	}

	applySnapshot(identity, in)
	if err := repos.Identity.Update(ctx, identity); err != nil {
		return nil, err
	}

	now := e.now()
	account.LastLoginAt = &now
	if err := repos.Account.Update(ctx, account); err != nil {
		return nil, err
	}
	return &Result{Outcome: OutcomeLogin, Account: account, Identity: identity}, nil
}

func (e *Engine) signup(ctx context.Context, repos *repository.Repositories, in *VerifiedIdentity) (*Result, error) {
	// The provider email is only adopted when no account uses it. Accounts are never merged by email.
	email := models.NormalizeEmail(in.Profile.Email)
	if email != "" {
		_, err := repos.Account.GetByEmail(ctx, email)
		switch {
		case err == nil:
			email = ""
		case !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
	}

	account := models.NewProviderAccount(in.Profile.Name, email)
	now := e.now()
	account.LastLoginAt = &now
	if err := repos.Account.Create(ctx, account); err != nil {
		return nil, err
	}

	identity := newIdentity(account.ID, in)
	if err := repos.Identity.Create(ctx, identity); err != nil {
		return nil, err
	}
	return &Result{Outcome: OutcomeSignup, Account: account, Identity: identity}, nil
}

// attach links a new identity to account. heldErr is returned when the account already holds
// an identity of the same provider.
func attach(ctx context.Context, repos *repository.Repositories, account *models.Account, in *VerifiedIdentity, heldErr error) (*models.Identity, error) {
	_, err := repos.Identity.GetByAccountAndProvider(ctx, account.ID, in.Provider)
	switch {
	case err == nil:
		return nil, heldErr
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	identity := newIdentity(account.ID, in)
	if err := repos.Identity.Create(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

func loadAccount(ctx context.Context, repos *repository.Repositories, id uint) (*models.Account, error) {
	account, err := repos.Account.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, autherr.ErrAccountNotFound
	}
	return account, err
}

func newIdentity(accountID uint, in *VerifiedIdentity) *models.Identity {
	identity := &models.Identity{
		AccountID:      accountID,
		Provider:       in.Provider,
		ProviderUserID: in.ProviderUserID,
	}
	applySnapshot(identity, in)
	return identity
}

// applySnapshot refreshes the stored profile and tokens from the latest handshake.
func applySnapshot(identity *models.Identity, in *VerifiedIdentity) {
	identity.DisplayName = utils.Truncate(in.Profile.Name, 150)
	identity.AvatarURL = utils.Truncate(in.Profile.AvatarURL, 255)
	identity.Email = utils.Truncate(in.Profile.Email, 200)
	identity.AccessToken = in.Token.AccessToken
	if in.Token.RefreshToken != "" {
		identity.RefreshToken = in.Token.RefreshToken
	}
	identity.ExpiresAt = nil
	if !in.Token.ExpiresAt.IsZero() {
		expires := in.Token.ExpiresAt
		identity.ExpiresAt = &expires
	}
}
