package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/HarooHub/app/models"
	"github.com/ManuelReschke/HarooHub/app/repository"
	"github.com/ManuelReschke/HarooHub/internal/pkg/autherr"
)

// fakeVerifier maps tokens to provider user ids.
type fakeVerifier map[string]string

func (f fakeVerifier) VerifyToken(_ context.Context, provider models.Provider, token string) (*VerifiedIdentity, error) {
	uid, ok := f[token]
	if !ok {
		return nil, &autherr.AuthProviderError{Provider: provider.String()}
	}
	return &VerifiedIdentity{Provider: provider, ProviderUserID: uid, Token: Token{AccessToken: token}}, nil
}

func newService(t *testing.T) (*Service, *repository.Factory) {
	t.Helper()
	store := newStore(t)
	return NewService(store, fakeVerifier{"tok-a": "uid-a", "tok-b": "uid-b", "tok-c": "uid-c"}), store
}

func providerOnlyAccount(t *testing.T, store *repository.Factory, uid string) *models.Account {
	t.Helper()
	res, err := NewEngine(store).Reconcile(context.Background(), &fakeSession{}, &VerifiedIdentity{
		Provider: models.ProviderTwitter, ProviderUserID: uid,
	})
	require.NoError(t, err)
	return res.Account
}

func TestService_CreateAndAuthenticate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.CreateAccount(ctx, CreateAccountInput{Email: "Eve@Example.com", Password: "secret123"})
	require.NoError(t, err)
	view := NewView(created, nil)
	assert.Equal(t, "eve@example.com", view.Email)
	assert.Equal(t, "eve", view.Name)
	assert.True(t, view.HasPassword)
	assert.Empty(t, view.Providers)

	_, err = svc.CreateAccount(ctx, CreateAccountInput{Email: "eve@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, autherr.ErrEmailTaken)

	account, err := svc.Authenticate(ctx, "eve@example.com", "secret123")
	require.NoError(t, err)
	assert.NotNil(t, account.LastLoginAt)

	_, err = svc.Authenticate(ctx, "eve@example.com", "wrong-pass")
	assert.ErrorIs(t, err, autherr.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, autherr.ErrInvalidCredentials)
}

func TestService_CreateAccountValidation(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.CreateAccount(context.Background(), CreateAccountInput{Email: "not-an-email", Password: "secret123"})
	assert.ErrorIs(t, err, autherr.ErrValidation)

	_, err = svc.CreateAccount(context.Background(), CreateAccountInput{Email: "ok@example.com", Password: "123"})
	assert.ErrorIs(t, err, autherr.ErrValidation)
}

func TestService_LinkAuth(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	first := seedLocalAccount(t, store, "first@example.com")
	second := seedLocalAccount(t, store, "second@example.com")

	view, err := svc.LinkAuth(ctx, first.ID, models.ProviderFacebook, "tok-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"facebook"}, view.Providers)

	t.Run("same identity on same account is a no-op", func(t *testing.T) {
		view, err := svc.LinkAuth(ctx, first.ID, models.ProviderFacebook, "tok-a")
		require.NoError(t, err)
		assert.Equal(t, []string{"facebook"}, view.Providers)
	})

	t.Run("identity owned by another account", func(t *testing.T) {
		_, err := svc.LinkAuth(ctx, second.ID, models.ProviderFacebook, "tok-a")
		assert.ErrorIs(t, err, autherr.ErrDuplicateProvider)
	})

	t.Run("second identity of a linked provider", func(t *testing.T) {
		_, err := svc.LinkAuth(ctx, first.ID, models.ProviderFacebook, "tok-b")
		assert.ErrorIs(t, err, autherr.ErrAlreadyLinked)
	})

	t.Run("handshake failure", func(t *testing.T) {
		_, err := svc.LinkAuth(ctx, first.ID, models.ProviderGoogle, "bogus")
		assert.True(t, autherr.IsAuthProvider(err))
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := svc.LinkAuth(ctx, first.ID, models.ProviderGoogle, " ")
		assert.ErrorIs(t, err, autherr.ErrValidation)
	})

	count, err := store.GetIdentityRepository().CountByAccount(ctx, second.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestService_UnlinkAuth(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		setup       func(t *testing.T, svc *Service, store *repository.Factory) *models.Account
		provider    models.Provider
		expectedErr error
	}{
		{
			name: "password and one identity",
			setup: func(t *testing.T, svc *Service, store *repository.Factory) *models.Account {
				acc := seedLocalAccount(t, store, "pw@example.com")
				_, err := svc.LinkAuth(ctx, acc.ID, models.ProviderGoogle, "tok-a")
				require.NoError(t, err)
				return acc
			},
			provider: models.ProviderGoogle,
		},
		{
			name: "no password and two identities",
			setup: func(t *testing.T, svc *Service, store *repository.Factory) *models.Account {
				acc := providerOnlyAccount(t, store, "tw-1")
				_, err := svc.LinkAuth(ctx, acc.ID, models.ProviderGoogle, "tok-a")
				require.NoError(t, err)
				return acc
			},
			provider: models.ProviderTwitter,
		},
		{
			name: "no password and last identity",
			setup: func(t *testing.T, svc *Service, store *repository.Factory) *models.Account {
				return providerOnlyAccount(t, store, "tw-2")
			},
			provider:    models.ProviderTwitter,
			expectedErr: autherr.ErrLastMethod,
		},
		{
			name: "provider not linked",
			setup: func(t *testing.T, svc *Service, store *repository.Factory) *models.Account {
				return seedLocalAccount(t, store, "none@example.com")
			},
			provider:    models.ProviderFacebook,
			expectedErr: autherr.ErrNotLinked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newService(t)
			acc := tt.setup(t, svc, store)
			before, err := store.GetIdentityRepository().CountByAccount(ctx, acc.ID)
			require.NoError(t, err)

			_, err = svc.UnlinkAuth(ctx, acc.ID, tt.provider)

			after, cerr := store.GetIdentityRepository().CountByAccount(ctx, acc.ID)
			require.NoError(t, cerr)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Equal(t, before, after)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, before-1, after)
		})
	}
}

func TestService_ReadAndAccessAccount(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	acc := providerOnlyAccount(t, store, "tw-9")

	view, err := svc.ReadAccount(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, acc.UUID, view.ID)
	assert.Equal(t, []string{"twitter"}, view.Providers)
	assert.False(t, view.HasPassword)

	_, err = svc.AccessAccount(ctx, acc.ID)
	require.NoError(t, err)

	_, err = svc.DismissAccount(ctx, acc.ID)
	require.NoError(t, err)
	_, err = svc.AccessAccount(ctx, acc.ID)
	assert.ErrorIs(t, err, autherr.ErrAccountDismissed)

	_, err = svc.ReadAccount(ctx, acc.ID+99)
	assert.ErrorIs(t, err, autherr.ErrAccountNotFound)
}

func TestService_UpdateAccount(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	a := seedLocalAccount(t, store, "a@example.com")
	seedLocalAccount(t, store, "b@example.com")

	name := "Alice"
	view, err := svc.UpdateAccount(ctx, a.ID, UpdateAccountInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice", view.Name)

	taken := "B@example.com"
	_, err = svc.UpdateAccount(ctx, a.ID, UpdateAccountInput{Email: &taken})
	assert.ErrorIs(t, err, autherr.ErrEmailTaken)

	empty := ""
	_, err = svc.UpdateAccount(ctx, a.ID, UpdateAccountInput{Email: &empty})
	assert.ErrorIs(t, err, autherr.ErrValidation)

	fresh := "new@example.com"
	view, err = svc.UpdateAccount(ctx, a.ID, UpdateAccountInput{Email: &fresh})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", view.Email)
}

func TestService_ChangePassword(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	local := seedLocalAccount(t, store, "pw@example.com")

	assert.ErrorIs(t, svc.ChangePassword(ctx, local.ID, "wrong", "another123"), autherr.ErrInvalidCredentials)
	require.NoError(t, svc.ChangePassword(ctx, local.ID, "secret123", "another123"))
	_, err := svc.Authenticate(ctx, "pw@example.com", "another123")
	require.NoError(t, err)

	// a provider account without email cannot sign in with a password
	noEmail := providerOnlyAccount(t, store, "tw-3")
	assert.ErrorIs(t, svc.ChangePassword(ctx, noEmail.ID, "", "first-pass"), autherr.ErrValidation)

	email := "tw3@example.com"
	_, err = svc.UpdateAccount(ctx, noEmail.ID, UpdateAccountInput{Email: &email})
	require.NoError(t, err)
	require.NoError(t, svc.ChangePassword(ctx, noEmail.ID, "", "first-pass"))

	view, err := svc.ReadAccount(ctx, noEmail.ID)
	require.NoError(t, err)
	assert.True(t, view.HasPassword)
}

func TestService_DismissedCannotLogin(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	acc := seedLocalAccount(t, store, "bye@example.com")

	view, err := svc.DismissAccount(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.STATUS_DISMISSED, view.Status)

	_, err = svc.Authenticate(ctx, "bye@example.com", "secret123")
	assert.ErrorIs(t, err, autherr.ErrAccountDismissed)
}

func TestService_RemoveAccount(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	acc := seedLocalAccount(t, store, "rm@example.com")
	_, err := svc.LinkAuth(ctx, acc.ID, models.ProviderGoogle, "tok-c")
	require.NoError(t, err)

	require.NoError(t, svc.RemoveAccount(ctx, acc.ID))

	accounts, identities := countRows(t, store)
	assert.Zero(t, accounts)
	assert.Zero(t, identities)

	assert.ErrorIs(t, svc.RemoveAccount(ctx, acc.ID), autherr.ErrAccountNotFound)
}
