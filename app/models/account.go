package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ManuelReschke/HarooHub/internal/pkg/autherr"
	"github.com/ManuelReschke/HarooHub/internal/pkg/utils"
)

const (
	STATUS_ACTIVE    = "active"
	STATUS_DISMISSED = "dismissed"

	MinPasswordLength = 6
)

var validate = validator.New()

// Account is one logical user. It can hold a password, linked provider identities, or both.
type Account struct {
	ID           uint       `gorm:"primaryKey" json:"-"`
	UUID         string     `gorm:"type:char(36);uniqueIndex" json:"id"`
	Email        *string    `gorm:"type:varchar(200);uniqueIndex" json:"email,omitempty" validate:"omitempty,email,max=200"`
	Name         string     `gorm:"type:varchar(150)" json:"name" validate:"max=150"`
	PasswordHash string     `gorm:"type:text" json:"-"`
	Status       string     `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active dismissed"`
	LastLoginAt  *time.Time `gorm:"type:timestamp;default:null" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns the public identifier.
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == "" {
		a.UUID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = STATUS_ACTIVE
	}
	return nil
}

func (a *Account) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("%w: %v", autherr.ErrValidation, err)
	}
	return nil
}

// NewLocalAccount builds an account that signs in with email and password.
func NewLocalAccount(email, password, name string) (*Account, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", autherr.ErrValidation)
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	a := &Account{
		Email:  &email,
		Name:   strings.TrimSpace(name),
		Status: STATUS_ACTIVE,
	}
	if err := a.SetPassword(password); err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// NewProviderAccount builds a password-less account for a first provider sign in.
// email may be empty when the provider did not share one.
func NewProviderAccount(name, email string) *Account {
	a := &Account{
		Name:   strings.TrimSpace(name),
		Status: STATUS_ACTIVE,
	}
	if e := NormalizeEmail(email); e != "" && validate.Var(e, "email") == nil {
		a.Email = &e
	}
	a.Name = utils.Truncate(a.Name, 150)
	return a
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", autherr.ErrValidation, MinPasswordLength)
	}
	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// HasPassword reports whether the account can sign in locally.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != ""
}

// CheckPassword verifies if the provided password matches the stored password
func (a *Account) CheckPassword(password string) bool {
	if !a.HasPassword() {
		return false
	}
	return CheckPasswordHash(password, a.PasswordHash)
}

// SetPassword hashes and sets a new password for the account
func (a *Account) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	a.PasswordHash = hashedPassword
	return nil
}

// IsActive reports whether the account has not been dismissed
func (a *Account) IsActive() bool {
	return a.Status == STATUS_ACTIVE
}

// AuthMethodCount is the number of ways the account can sign in, given its identity count.
func (a *Account) AuthMethodCount(identities int64) int64 {
	n := identities
	if a.HasPassword() {
		n++
	}
	return n
}

// EmailValue returns the email or an empty string.
func (a *Account) EmailValue() string {
	if a.Email == nil {
		return ""
	}
	return *a.Email
}
