package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/HarooHub/app/models"
	"github.com/ManuelReschke/HarooHub/app/repository"
	"github.com/ManuelReschke/HarooHub/internal/pkg/autherr"
)

var validate = validator.New()

// Service implements the account self-service and linking operations. Every mutation runs
// inside one store transaction.
type Service struct {
	store    repository.Store
	verifier TokenVerifier
	now      func() time.Time
}

func NewService(store repository.Store, verifier TokenVerifier) *Service {
	return &Service{store: store, verifier: verifier, now: time.Now}
}

// CreateAccount signs up a local account with email and password.
func (s *Service) CreateAccount(ctx context.Context, in CreateAccountInput) (*models.Account, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", autherr.ErrValidation, err)
	}
	account, err := models.NewLocalAccount(in.Email, in.Password, in.Name)
	if err != nil {
		return nil, err
	}

	err = s.store.Atomic(ctx, func(repos *repository.Repositories) error {
		_, err := repos.Account.GetByEmail(ctx, account.EmailValue())
		switch {
		case err == nil:
			return autherr.ErrEmailTaken
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}
		return repos.Account.Create(ctx, account)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, autherr.ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}

	fiberlog.Infof("[Accounts] Created local account %s", account.UUID)
	return account, nil
}

// Authenticate checks a local credential and returns the account it belongs to.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	repos := s.store.Repositories()
	account, err := repos.Account.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, autherr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !account.CheckPassword(password) {
		return nil, autherr.ErrInvalidCredentials
	}
	if !account.IsActive() {
		return nil, autherr.ErrAccountDismissed
	}

	now := s.now()
	account.LastLoginAt = &now
	if err := repos.Account.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// ChangePassword replaces the password. An account without a password may set its first one
// without knowing a current password, as long as it has an email to sign in with.
func (s *Service) ChangePassword(ctx context.Context, accountID uint, current, next string) error {
	if err := models.ValidatePassword(next); err != nil {
		return err
	}
	return s.store.Atomic(ctx, func(repos *repository.Repositories) error {
		account, err := loadAccount(ctx, repos, accountID)
		if err != nil {
			return err
		}
		if account.HasPassword() && !account.CheckPassword(current) {
			return autherr.ErrInvalidCredentials
		}
		if !account.HasPassword() && account.Email == nil {
			return fmt.Errorf("%w: set an email before adding a password", autherr.ErrValidation)
		}
		if err := account.SetPassword(next); err != nil {
			return err
		}
		return repos.Account.Update(ctx, account)
	})
}

// LinkAuth verifies a provider token and links the identity to the account.
// Linking an identity the account already owns succeeds without changes.
func (s *Service) LinkAuth(ctx context.Context, accountID uint, provider models.Provider, providerToken string) (*AccountView, error) {
	if strings.TrimSpace(providerToken) == "" {
		return nil, fmt.Errorf("%w: provider token is required", autherr.ErrValidation)
	}
	in, err := s.verifier.VerifyToken(ctx, provider, providerToken)
	if err != nil {
		return nil, err
	}

	link := func() error {
		return s.store.Atomic(ctx, func(repos *repository.Repositories) error {
			account, err := loadAccount(ctx, repos, accountID)
			if err != nil {
				return err
			}
			existing, err := repos.Identity.GetByProviderUserID(ctx, in.Provider, in.ProviderUserID)
			switch {
			case err == nil && existing.AccountID == account.ID:
				return nil
			case err == nil:
				return autherr.ErrDuplicateProvider
			case !errors.Is(err, repository.ErrNotFound):
				return err
			}
			_, err = attach(ctx, repos, account, in, autherr.ErrAlreadyLinked)
			return err
		})
	}

	err = link()
	if errors.Is(err, repository.ErrDuplicate) {
		err = link()
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, autherr.ErrDuplicateProvider
	}
	if err != nil {
		return nil, err
	}
	return s.ReadAccount(ctx, accountID)
}

// UnlinkAuth removes the account's identity for provider unless it is the last way to sign in.
func (s *Service) UnlinkAuth(ctx context.Context, accountID uint, provider models.Provider) (*AccountView, error) {
	err := s.store.Atomic(ctx, func(repos *repository.Repositories) error {
		account, err := loadAccount(ctx, repos, accountID)
		if err != nil {
			return err
		}
		identity, err := repos.Identity.GetByAccountAndProvider(ctx, account.ID, provider)
		if errors.Is(err, repository.ErrNotFound) {
			return autherr.ErrNotLinked
		}
		if err != nil {
			return err
		}
		count, err := repos.Identity.CountByAccount(ctx, account.ID)
		if err != nil {
			return err
		}
		if account.AuthMethodCount(count) <= 1 {
			return autherr.ErrLastMethod
		}
		return repos.Identity.Delete(ctx, identity.ID)
	})
	if err != nil {
		return nil, err
	}
	fiberlog.Infof("[Accounts] Unlinked %s from account %d", provider, accountID)
	return s.ReadAccount(ctx, accountID)
}

// ReadAccount returns the account with the names of its linked providers.
func (s *Service) ReadAccount(ctx context.Context, accountID uint) (*AccountView, error) {
	repos := s.store.Repositories()
	account, err := loadAccount(ctx, repos, accountID)
	if err != nil {
		return nil, err
	}
	identities, err := repos.Identity.ListByAccount(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	return NewView(account, identities), nil
}

// AccessAccount is ReadAccount for API clients. It refuses dismissed accounts and records the access.
func (s *Service) AccessAccount(ctx context.Context, accountID uint) (*AccountView, error) {
	var view *AccountView
	err := s.store.Atomic(ctx, func(repos *repository.Repositories) error {
		account, err := loadAccount(ctx, repos, accountID)
		if err != nil {
			return err
		}
		if !account.IsActive() {
			return autherr.ErrAccountDismissed
		}
		now := s.now()
		account.LastLoginAt = &now
		if err := repos.Account.Update(ctx, account); err != nil {
			return err
		}
		identities, err := repos.Identity.ListByAccount(ctx, account.ID)
		if err != nil {
			return err
		}
		view = NewView(account, identities)
		return nil
	})
	return view, err
}

// UpdateAccount changes name and email.
func (s *Service) UpdateAccount(ctx context.Context, accountID uint, in UpdateAccountInput) (*AccountView, error) {
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", autherr.ErrValidation, err)
	}

	err := s.store.Atomic(ctx, func(repos *repository.Repositories) error {
		account, err := loadAccount(ctx, repos, accountID)
		if err != nil {
			return err
		}
		if in.Name != nil {
			account.Name = strings.TrimSpace(*in.Name)
		}
		if in.Email != nil {
			email := models.NormalizeEmail(*in.Email)
			if email == "" {
				if account.HasPassword() {
					return fmt.Errorf("%w: email is required while a password is set", autherr.ErrValidation)
				}
				account.Email = nil
			} else if email != account.EmailValue() {
				other, err := repos.Account.GetByEmail(ctx, email)
				switch {
				case err == nil && other.ID != account.ID:
					return autherr.ErrEmailTaken
				case err != nil && !errors.Is(err, repository.ErrNotFound):
					return err
				}
				account.Email = &email
			}
		}
		if err := account.Validate(); err != nil {
			return err
		}
		return repos.Account.Update(ctx, account)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, autherr.ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return s.ReadAccount(ctx, accountID)
}

// DismissAccount deactivates the account. Its data is kept but it can no longer sign in.
func (s *Service) DismissAccount(ctx context.Context, accountID uint) (*AccountView, error) {
	err := s.store.Atomic(ctx, func(repos *repository.Repositories) error {
		account, err := loadAccount(ctx, repos, accountID)
		if err != nil {
			return err
		}
		account.Status = models.STATUS_DISMISSED
		return repos.Account.Update(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	fiberlog.Infof("[Accounts] Dismissed account %d", accountID)
	return s.ReadAccount(ctx, accountID)
}

// RemoveAccount deletes the account and all of its identities.
func (s *Service) RemoveAccount(ctx context.Context, accountID uint) error {
	err := s.store.Atomic(ctx, func(repos *repository.Repositories) error {
		if err := repos.Identity.DeleteByAccount(ctx, accountID); err != nil {
			return err
		}
		err := repos.Account.Delete(ctx, accountID)
		if errors.Is(err, repository.ErrNotFound) {
			return autherr.ErrAccountNotFound
		}
		return err
	})
	if err != nil {
		return err
	}
	fiberlog.Infof("[Accounts] Removed account %d", accountID)
	return nil
}
