package oauth

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/HarooHub/app/models"
	"github.com/ManuelReschke/HarooHub/internal/pkg/autherr"
)

func TestSessionPayload(t *testing.T) {
	raw, err := SessionPayload(models.ProviderGoogle, " ya29.token ")
	require.NoError(t, err)
	assert.JSONEq(t, `{"AccessToken":"ya29.token"}`, raw)

	raw, err = SessionPayload(models.ProviderTwitter, "abc:def")
	require.NoError(t, err)
	var tw struct {
		AccessToken struct{ Token, Secret string }
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &tw))
	assert.Equal(t, "abc", tw.AccessToken.Token)
	assert.Equal(t, "def", tw.AccessToken.Secret)

	_, err = SessionPayload(models.ProviderTwitter, "no-secret")
	assert.ErrorIs(t, err, autherr.ErrValidation)

	_, err = SessionPayload(models.ProviderFacebook, "")
	assert.ErrorIs(t, err, autherr.ErrValidation)
}

func TestFromGothUser(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	in, err := FromGothUser(goth.User{
		Provider:     "google",
		UserID:       "u123",
		Email:        "gina@example.com",
		FirstName:    "Gina",
		LastName:     "Lee",
		AvatarURL:    "https://img.example.com/g.png",
		AccessToken:  "at",
		RefreshToken: "rt",
		ExpiresAt:    expires,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProviderGoogle, in.Provider)
	assert.Equal(t, "u123", in.ProviderUserID)
	assert.Equal(t, "Gina Lee", in.Profile.Name)
	assert.Equal(t, "at", in.Token.AccessToken)
	assert.Equal(t, expires, in.Token.ExpiresAt)

	tw, err := FromGothUser(goth.User{Provider: "twitter", UserID: "9", NickName: "tweety", AccessToken: "k", AccessTokenSecret: "s"})
	require.NoError(t, err)
	assert.Equal(t, "tweety", tw.Profile.Name)
	assert.Equal(t, "k:s", tw.Token.AccessToken)

	_, err = FromGothUser(goth.User{Provider: "github", UserID: "1"})
	assert.ErrorIs(t, err, autherr.ErrUnknownProvider)

	_, err = FromGothUser(goth.User{Provider: "facebook"})
	assert.True(t, autherr.IsAuthProvider(err))
}

func TestGothHandshake_DeniedConsent(t *testing.T) {
	app := fiber.New()
	app.Get("/auth/:provider/callback", func(c *fiber.Ctx) error {
		_, err := NewGothHandshake().Complete(c)
		assert.True(t, autherr.IsAuthProvider(err))
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/auth/google/callback?error=access_denied", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestGothHandshake_VerifyTokenUnknownProvider(t *testing.T) {
	goth.ClearProviders()
	_, err := NewGothHandshake().VerifyToken(context.Background(), models.ProviderFacebook, "token")
	assert.ErrorIs(t, err, autherr.ErrUnknownProvider)
}

func TestCallbackURL(t *testing.T) {
	t.Setenv("PUBLIC_DOMAIN", "https://hub.example.com/")
	assert.Equal(t, "https://hub.example.com/auth/twitter/callback", CallbackURL(models.ProviderTwitter))
}
