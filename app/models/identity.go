package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/ManuelReschke/HarooHub/internal/pkg/autherr"
)

// Provider names a federated identity provider.
type Provider string

const (
	ProviderTwitter  Provider = "twitter"
	ProviderFacebook Provider = "facebook"
	ProviderGoogle   Provider = "google"
)

// Providers lists the supported providers in display order.
func Providers() []Provider {
	return []Provider{ProviderTwitter, ProviderFacebook, ProviderGoogle}
}

// ParseProvider accepts only the supported provider names.
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Providers() {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", autherr.ErrUnknownProvider, name)
}

func (p Provider) String() string { return string(p) }

// Label is the provider name as shown to users.
func (p Provider) Label() string {
	switch p {
	case ProviderTwitter:
		return "Twitter"
	case ProviderFacebook:
		return "Facebook"
	case ProviderGoogle:
		return "Google"
	}
	return string(p)
}

// Identity links one provider account to an Account.
// (provider, provider_user_id) is unique across all accounts and an account holds at most one
// identity per provider.
type Identity struct {
	ID             uint       `gorm:"primaryKey" json:"-"`
	AccountID      uint       `gorm:"not null;uniqueIndex:idx_identity_account_provider" json:"-"`
	Provider       Provider   `gorm:"type:varchar(50);not null;uniqueIndex:idx_identity_provider_uid;uniqueIndex:idx_identity_account_provider" json:"provider"`
	ProviderUserID string     `gorm:"type:varchar(191);not null;uniqueIndex:idx_identity_provider_uid" json:"-"`
	DisplayName    string     `gorm:"type:varchar(150)" json:"-"`
	AvatarURL      string     `gorm:"type:varchar(255)" json:"-"`
	Email          string     `gorm:"type:varchar(200)" json:"-"`
	AccessToken    string     `gorm:"type:text" json:"-"`
	RefreshToken   string     `gorm:"type:text" json:"-"`
	ExpiresAt      *time.Time `gorm:"type:timestamp;default:null" json:"-"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"-"`
}
