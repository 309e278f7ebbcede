package repository

import (
	"context"

	"github.com/ManuelReschke/HarooHub/app/models"
	"gorm.io/gorm"
)

// accountRepository implements the AccountRepository interface
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository instance
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create creates a new account in the database
func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	return translate(r.db.WithContext(ctx).Create(account).Error)
}

// GetByID retrieves an account by its ID
func (r *accountRepository) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

// GetByUUID retrieves an account by its public identifier
func (r *accountRepository) GetByUUID(ctx context.Context, uuid string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&account).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

// GetByEmail retrieves an account by its email address
func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&account).Error
	if err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

// Update updates an existing account in the database
func (r *accountRepository) Update(ctx context.Context, account *models.Account) error {
	return translate(r.db.WithContext(ctx).Save(account).Error)
}

// Delete removes an account row. Identities must be removed first.
func (r *accountRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Account{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
