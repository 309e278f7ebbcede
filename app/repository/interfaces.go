package repository

import (
	"context"

	"github.com/ManuelReschke/HarooHub/app/models"
	"gorm.io/gorm"
)

// AccountRepository defines the interface for account-related database operations
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uint) (*models.Account, error)
	GetByUUID(ctx context.Context, uuid string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id uint) error
}

// IdentityRepository defines the interface for linked provider identities
type IdentityRepository interface {
	Create(ctx context.Context, identity *models.Identity) error
	GetByProviderUserID(ctx context.Context, provider models.Provider, providerUserID string) (*models.Identity, error)
	GetByAccountAndProvider(ctx context.Context, accountID uint, provider models.Provider) (*models.Identity, error)
	ListByAccount(ctx context.Context, accountID uint) ([]models.Identity, error)
	CountByAccount(ctx context.Context, accountID uint) (int64, error)
	Update(ctx context.Context, identity *models.Identity) error
	Delete(ctx context.Context, id uint) error
	DeleteByAccount(ctx context.Context, accountID uint) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	Account  AccountRepository
	Identity IdentityRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Account:  NewAccountRepository(db),
		Identity: NewIdentityRepository(db),
	}
}

// Store is the identity record store: plain repositories plus an atomic unit of work.
type Store interface {
	Repositories() *Repositories
	// Atomic runs fn inside one transaction. Either every row change made through the
	// passed repositories commits, or none does.
	Atomic(ctx context.Context, fn func(repos *Repositories) error) error
}
