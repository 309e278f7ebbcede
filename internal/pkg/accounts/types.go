package accounts

import (
	"context"
	"time"

	"github.com/ManuelReschke/HarooHub/app/models"
)

// Profile is what a provider reports about its user. It is advisory only.
type Profile struct {
	Name      string
	Email     string
	AvatarURL string
}

// Token holds the provider credentials returned by a handshake.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// VerifiedIdentity is the result of a successful provider handshake.
type VerifiedIdentity struct {
	Provider       models.Provider
	ProviderUserID string
	Profile        Profile
	Token          Token
}

// SessionBinder is the slice of the request session the engine needs.
type SessionBinder interface {
	// AccountID returns the authenticated account or 0 for an anonymous session.
	AccountID() uint
	// Authenticate binds the session to the account.
	Authenticate(accountID uint) error
}

// TokenVerifier exchanges a provider token for a verified identity.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, provider models.Provider, token string) (*VerifiedIdentity, error)
}

// Outcome is the decision the reconciliation engine took.
type Outcome string

const (
	OutcomeLogin  Outcome = "login"
	OutcomeLinked Outcome = "linked"
	OutcomeSignup Outcome = "signup"
)

// Result describes a successful reconciliation.
type Result struct {
	Outcome  Outcome
	Account  *models.Account
	Identity *models.Identity
}

// AccountView is the public representation of an account. It never carries provider tokens or
// profile data, only the names of the linked providers.
type AccountView struct {
	ID          string    `json:"id"`
	Email       string    `json:"email,omitempty"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	HasPassword bool      `json:"has_password"`
	Providers   []string  `json:"providers"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateAccountInput is the payload for a local signup.
type CreateAccountInput struct {
	Email    string `json:"email" form:"email" validate:"required,email,max=200"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
	Name     string `json:"name" form:"name" validate:"max=150"`
}

// UpdateAccountInput changes profile fields. Nil fields are left untouched; an empty email removes it.
type UpdateAccountInput struct {
	Name  *string `json:"name" form:"name" validate:"omitempty,max=150"`
	Email *string `json:"email" form:"email" validate:"omitempty,email,max=200"`
}

// NewView builds the public representation of account.
func NewView(account *models.Account, identities []models.Identity) *AccountView {
	providers := make([]string, 0, len(identities))
	for _, identity := range identities {
		providers = append(providers, identity.Provider.String())
	}
	return &AccountView{
		ID:          account.UUID,
		Email:       account.EmailValue(),
		Name:        account.Name,
		Status:      account.Status,
		HasPassword: account.HasPassword(),
		Providers:   providers,
		CreatedAt:   account.CreatedAt,
	}
}
