package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/markbates/goth"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/ManuelReschke/HarooHub/app/models"
	"github.com/ManuelReschke/HarooHub/internal/pkg/accounts"
	"github.com/ManuelReschke/HarooHub/internal/pkg/autherr"
)

// Handshake runs the provider side of a federated login. Implementations hide every provider
// specific detail, callers only see verified identities.
type Handshake interface {
	// Begin redirects the client to the provider.
	Begin(c *fiber.Ctx) error
	// Complete verifies the provider callback of the current request.
	Complete(c *fiber.Ctx) (*accounts.VerifiedIdentity, error)
	accounts.TokenVerifier
}

// GothHandshake implements Handshake with the registered goth providers.
type GothHandshake struct{}

func NewGothHandshake() *GothHandshake {
	return &GothHandshake{}
}

func (h *GothHandshake) Begin(c *fiber.Ctx) error {
	if _, err := models.ParseProvider(c.Params("provider")); err != nil {
		return err
	}
	return gothfiber.BeginAuthHandler(c)
}

func (h *GothHandshake) Complete(c *fiber.Ctx) (*accounts.VerifiedIdentity, error) {
	provider, err := models.ParseProvider(c.Params("provider"))
	if err != nil {
		return nil, err
	}
	if reason := deniedReason(c); reason != "" {
		return nil, &autherr.AuthProviderError{Provider: provider.String(), Err: fmt.Errorf("consent denied: %s", reason)}
	}

	user, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		return nil, &autherr.AuthProviderError{Provider: provider.String(), Err: err}
	}
	return FromGothUser(user)
}

// VerifyToken fetches the provider profile that belongs to an access token obtained by the
// client. Twitter tokens are passed as "token:secret".
func (h *GothHandshake) VerifyToken(ctx context.Context, provider models.Provider, token string) (*accounts.VerifiedIdentity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := goth.GetProvider(provider.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", autherr.ErrUnknownProvider, provider)
	}
	payload, err := SessionPayload(provider, token)
	if err != nil {
		return nil, err
	}
	sess, err := p.UnmarshalSession(payload)
	if err != nil {
		return nil, &autherr.AuthProviderError{Provider: provider.String(), Err: err}
	}
	user, err := p.FetchUser(sess)
	if err != nil {
		return nil, &autherr.AuthProviderError{Provider: provider.String(), Err: err}
	}
	return FromGothUser(user)
}

// SessionPayload builds the serialized goth session that carries only the access token.
func SessionPayload(provider models.Provider, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: provider token is required", autherr.ErrValidation)
	}

	var payload any
	switch provider {
	case models.ProviderTwitter:
		key, secret, ok := strings.Cut(token, ":")
		if !ok || key == "" || secret == "" {
			return "", fmt.Errorf("%w: twitter token must be token:secret", autherr.ErrValidation)
		}
		payload = map[string]any{"AccessToken": map[string]string{"Token": key, "Secret": secret}}
	default:
		payload = map[string]any{"AccessToken": token}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// FromGothUser converts a goth user into a verified identity.
func FromGothUser(u goth.User) (*accounts.VerifiedIdentity, error) {
	provider, err := models.ParseProvider(u.Provider)
	if err != nil {
		return nil, err
	}
	if u.UserID == "" {
		return nil, &autherr.AuthProviderError{Provider: provider.String(), Err: errors.New("provider returned no user id")}
	}

	access := u.AccessToken
	if u.AccessTokenSecret != "" {
		access = u.AccessToken + ":" + u.AccessTokenSecret
	}

	return &accounts.VerifiedIdentity{
		Provider:       provider,
		ProviderUserID: u.UserID,
		Profile: accounts.Profile{
			Name:      displayName(u),
			Email:     u.Email,
			AvatarURL: u.AvatarURL,
		},
		Token: accounts.Token{
			AccessToken:  access,
			RefreshToken: u.RefreshToken,
			ExpiresAt:    u.ExpiresAt,
		},
	}, nil
}

func displayName(u goth.User) string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	for _, v := range []string{u.Name, u.NickName, full} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// deniedReason reports a refused consent. Google and facebook send "error", twitter "denied".
func deniedReason(c *fiber.Ctx) string {
	if reason := c.Query("error"); reason != "" {
		return reason
	}
	if c.Query("denied") != "" {
		return "denied"
	}
	return ""
}
