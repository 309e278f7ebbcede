package autherr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrForbidden is returned when the CSRF guard rejects a request.
	ErrForbidden = errors.New("forbidden")

	ErrDuplicateProvider  = errors.New("this provider identity is already linked")
	ErrAlreadyLinked      = errors.New("this provider is already linked to the account")
	ErrLastMethod         = errors.New("cannot remove the last sign-in method of the account")
	ErrNotLinked          = errors.New("provider is not linked to the account")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountDismissed   = errors.New("account is dismissed")
	ErrEmailTaken         = errors.New("email is already in use")
	ErrUnauthorized       = errors.New("login required")
	ErrUnknownProvider    = errors.New("unknown provider")
	ErrValidation         = errors.New("validation failed")
)

// AuthProviderError reports a failed or refused provider handshake.
type AuthProviderError struct {
	Provider string
	Err      error
}

func (e *AuthProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s authentication failed", e.Provider)
	}
	return fmt.Sprintf("%s authentication failed: %v", e.Provider, e.Err)
}

func (e *AuthProviderError) Unwrap() error { return e.Err }

// StoreUnavailableError reports that the session or identity store could not be reached.
type StoreUnavailableError struct {
	Store string
	Err   error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("%s store unavailable: %v", e.Store, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// StoreUnavailable wraps err unless it already is a StoreUnavailableError.
func StoreUnavailable(store string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreUnavailableError
	if errors.As(err, &se) {
		return err
	}
	return &StoreUnavailableError{Store: store, Err: err}
}

// IsStoreUnavailable reports whether err is (or wraps) a StoreUnavailableError.
func IsStoreUnavailable(err error) bool {
	var se *StoreUnavailableError
	return errors.As(err, &se)
}

// IsAuthProvider reports whether err is (or wraps) an AuthProviderError.
func IsAuthProvider(err error) bool {
	var pe *AuthProviderError
	return errors.As(err, &pe)
}

// Status maps an error to the HTTP status used by the JSON API.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrNotLinked):
		return fiber.StatusNotFound
	case errors.Is(err, ErrDuplicateProvider), errors.Is(err, ErrAlreadyLinked),
		errors.Is(err, ErrLastMethod), errors.Is(err, ErrEmailTaken), errors.Is(err, ErrAccountDismissed):
		return fiber.StatusConflict
	case errors.Is(err, ErrValidation), errors.Is(err, ErrUnknownProvider):
		return fiber.StatusUnprocessableEntity
	case IsAuthProvider(err):
		return fiber.StatusBadGateway
	case IsStoreUnavailable(err):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// Code returns a stable machine readable code for err.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, ErrNotLinked):
		return "not_linked"
	case errors.Is(err, ErrDuplicateProvider):
		return "duplicate_provider"
	case errors.Is(err, ErrAlreadyLinked):
		return "already_linked"
	case errors.Is(err, ErrLastMethod):
		return "last_method"
	case errors.Is(err, ErrEmailTaken):
		return "email_taken"
	case errors.Is(err, ErrAccountDismissed):
		return "account_dismissed"
	case errors.Is(err, ErrUnknownProvider):
		return "unknown_provider"
	case errors.Is(err, ErrValidation):
		return "validation_failed"
	case IsAuthProvider(err):
		return "auth_provider_failed"
	case IsStoreUnavailable(err):
		return "service_unavailable"
	default:
		return "internal_server_error"
	}
}

// Message returns the text that may be shown to the user for err.
// Internal failures never leak their cause.
func Message(err error) string {
	switch {
	case IsStoreUnavailable(err):
		return "The service is temporarily unavailable. Please try again later."
	case IsAuthProvider(err):
		var pe *AuthProviderError
		errors.As(err, &pe)
		return fmt.Sprintf("Sign in with %s did not complete. Please try again.", pe.Provider)
	case Code(err) == "internal_server_error":
		return "Something went wrong. Please try again."
	default:
		return err.Error()
	}
}
