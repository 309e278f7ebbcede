package repository

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// Repositories returns a singleton instance of all repositories
func (f *Factory) Repositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// DB returns the underlying connection
func (f *Factory) DB() *gorm.DB {
	return f.db
}

// GetAccountRepository returns the account repository instance
func (f *Factory) GetAccountRepository() AccountRepository {
	return f.Repositories().Account
}

// GetIdentityRepository returns the identity repository instance
func (f *Factory) GetIdentityRepository() IdentityRepository {
	return f.Repositories().Identity
}

// Atomic runs fn with repositories bound to a single transaction.
func (f *Factory) Atomic(ctx context.Context, fn func(repos *Repositories) error) error {
	var fnErr error
	err := f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(NewRepositories(tx))
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return translate(err)
}
