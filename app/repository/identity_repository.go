package repository

import (
	"context"

	"github.com/ManuelReschke/HarooHub/app/models"
	"gorm.io/gorm"
)

// identityRepository implements the IdentityRepository interface
type identityRepository struct {
	db *gorm.DB
}

// NewIdentityRepository creates a new identity repository instance
func NewIdentityRepository(db *gorm.DB) IdentityRepository {
	return &identityRepository{db: db}
}

// Create inserts a new identity. Unique index violations surface as ErrDuplicate.
func (r *identityRepository) Create(ctx context.Context, identity *models.Identity) error {
	return translate(r.db.WithContext(ctx).Create(identity).Error)
}

// GetByProviderUserID finds the identity for a provider account, whichever account owns it
func (r *identityRepository) GetByProviderUserID(ctx context.Context, provider models.Provider, providerUserID string) (*models.Identity, error) {
	var identity models.Identity
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_user_id = ?", provider, providerUserID).
		First(&identity).Error
	if err != nil {
		return nil, translate(err)
	}
	return &identity, nil
}

// GetByAccountAndProvider finds the identity an account holds for a provider
func (r *identityRepository) GetByAccountAndProvider(ctx context.Context, accountID uint, provider models.Provider) (*models.Identity, error) {
	var identity models.Identity
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND provider = ?", accountID, provider).
		First(&identity).Error
	if err != nil {
		return nil, translate(err)
	}
	return &identity, nil
}

// ListByAccount returns all identities of an account ordered by creation
func (r *identityRepository) ListByAccount(ctx context.Context, accountID uint) ([]models.Identity, error) {
	var identities []models.Identity
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at ASC, id ASC").
		Find(&identities).Error
	return identities, translate(err)
}

// CountByAccount returns the number of identities linked to an account
func (r *identityRepository) CountByAccount(ctx context.Context, accountID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Identity{}).Where("account_id = ?", accountID).Count(&count).Error
	return count, translate(err)
}

// Update saves provider tokens and the profile snapshot
func (r *identityRepository) Update(ctx context.Context, identity *models.Identity) error {
	return translate(r.db.WithContext(ctx).Save(identity).Error)
}

// Delete removes a single identity
func (r *identityRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Identity{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByAccount removes every identity of an account
func (r *identityRepository) DeleteByAccount(ctx context.Context, accountID uint) error {
	return translate(r.db.WithContext(ctx).Where("account_id = ?", accountID).Delete(&models.Identity{}).Error)
}
