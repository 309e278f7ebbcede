package accounts

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/HarooHub/app/models"
	"github.com/ManuelReschke/HarooHub/app/repository"
	"github.com/ManuelReschke/HarooHub/internal/pkg/autherr"
	"github.com/ManuelReschke/HarooHub/internal/pkg/testdb"
)

type fakeSession struct {
	mu        sync.Mutex
	accountID uint
	err       error
	calls     int
}

func (f *fakeSession) AccountID() uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accountID
}

func (f *fakeSession) Authenticate(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.accountID = id
	return nil
}

func googleIdentity(uid string) *VerifiedIdentity {
	return &VerifiedIdentity{
		Provider:       models.ProviderGoogle,
		ProviderUserID: uid,
		Profile:        Profile{Name: "Gina", Email: "gina@example.com", AvatarURL: "https://img.example.com/g.png"},
		Token:          Token{AccessToken: "at-1", RefreshToken: "rt-1", ExpiresAt: time.Now().Add(time.Hour)},
	}
}

func countRows(t *testing.T, store *repository.Factory) (accounts, identities int64) {
	t.Helper()
	db := store.DB()
	require.NoError(t, db.Model(&models.Account{}).Count(&accounts).Error)
	require.NoError(t, db.Model(&models.Identity{}).Count(&identities).Error)
	return accounts, identities
}

func TestReconcile_UnseenIdentitySignsUp(t *testing.T) {
	store := newStore(t)
	engine := NewEngine(store)
	sess := &fakeSession{}

	res, err := engine.Reconcile(context.Background(), sess, googleIdentity("u123"))
	require.NoError(t, err)

	assert.Equal(t, OutcomeSignup, res.Outcome)
	assert.Equal(t, res.Account.ID, sess.AccountID())
	assert.False(t, res.Account.HasPassword())
	assert.Equal(t, "gina@example.com", res.Account.EmailValue())
	assert.Equal(t, "at-1", res.Identity.AccessToken)

	accounts, identities := countRows(t, store)
	assert.EqualValues(t, 1, accounts)
	assert.EqualValues(t, 1, identities)
}

func TestReconcile_LongMultiByteNameIsCutOnRunes(t *testing.T) {
	store := newStore(t)
	engine := NewEngine(store)
	in := googleIdentity("u-long")
	in.Profile.Name = "a" + strings.Repeat("é", 200)

	res, err := engine.Reconcile(context.Background(), &fakeSession{}, in)
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(res.Account.Name))
	assert.Equal(t, 150, utf8.RuneCountInString(res.Account.Name))

	stored, err := store.GetIdentityRepository().GetByProviderUserID(context.Background(), models.ProviderGoogle, "u-long")
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(stored.DisplayName))
	assert.Equal(t, "a"+strings.Repeat("é", 149), stored.DisplayName)
}

func TestReconcile_KnownIdentityLogsIntoOwner(t *testing.T) {
	store := newStore(t)
	engine := NewEngine(store)
	ctx := context.Background()

	owner, err := engine.Reconcile(ctx, &fakeSession{}, googleIdentity("u123"))
	require.NoError(t, err)

	other := seedLocalAccount(t, store, "other@example.com")
	sess := &fakeSession{accountID: other.ID}

	in := googleIdentity("u123")
	in.Token.AccessToken = "at-2"
	res, err := engine.Reconcile(ctx, sess, in)
	require.NoError(t, err)

	assert.Equal(t, OutcomeLogin, res.Outcome)
	assert.Equal(t, owner.Account.ID, sess.AccountID())
	assert.Equal(t, "at-2", res.Identity.AccessToken)

	// no second identity, no transfer
	_, identities := countRows(t, store)
	assert.EqualValues(t, 1, identities)
	_, err = store.GetIdentityRepository().GetByAccountAndProvider(ctx, other.ID, models.ProviderGoogle)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReconcile_LinksToSignedInAccount(t *testing.T) {
	store := newStore(t)
	engine := NewEngine(store)
	account := seedLocalAccount(t, store, "linker@example.com")
	sess := &fakeSession{accountID: account.ID}

	res, err := engine.Reconcile(context.Background(), sess, googleIdentity("u9"))
	require.NoError(t, err)

	assert.Equal(t, OutcomeLinked, res.Outcome)
	assert.Equal(t, account.ID, res.Identity.AccountID)
	assert.Zero(t, sess.calls)
}

func TestReconcile_SecondIdentityOfSameProviderRejected(t *testing.T) {
	store := newStore(t)
	engine := NewEngine(store)
	account := seedLocalAccount(t, store, "twice@example.com")
	sess := &fakeSession{accountID: account.ID}
	ctx := context.Background()

	_, err := engine.Reconcile(ctx, sess, googleIdentity("first"))
	require.NoError(t, err)

	_, err = engine.Reconcile(ctx, sess, googleIdentity("second"))
	assert.ErrorIs(t, err, autherr.ErrDuplicateProvider)

	identities, err := store.GetIdentityRepository().ListByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, identities, 1)
	assert.Equal(t, "first", identities[0].ProviderUserID)
}

func TestReconcile_SignupDoesNotTakeExistingEmail(t *testing.T) {
	store := newStore(t)
	engine := NewEngine(store)
	existing := seedLocalAccount(t, store, "gina@example.com")

	res, err := engine.Reconcile(context.Background(), &fakeSession{}, googleIdentity("u5"))
	require.NoError(t, err)

	assert.Equal(t, OutcomeSignup, res.Outcome)
	assert.NotEqual(t, existing.ID, res.Account.ID)
	assert.Nil(t, res.Account.Email)
}

func TestReconcile_DismissedOwnerRefused(t *testing.T) {
	store := newStore(t)
	engine := NewEngine(store)
	ctx := context.Background()

	res, err := engine.Reconcile(ctx, &fakeSession{}, googleIdentity("gone"))
	require.NoError(t, err)
	res.Account.Status = models.STATUS_DISMISSED
	require.NoError(t, store.GetAccountRepository().Update(ctx, res.Account))

	sess := &fakeSession{}
	_, err = engine.Reconcile(ctx, sess, googleIdentity("gone"))
	assert.ErrorIs(t, err, autherr.ErrAccountDismissed)
	assert.Zero(t, sess.AccountID())
}

func TestReconcile_SessionFailureSurfaces(t *testing.T) {
	store := newStore(t)
	engine := NewEngine(store)
	down := autherr.StoreUnavailable("session", errors.New("redis down"))

	_, err := engine.Reconcile(context.Background(), &fakeSession{err: down}, googleIdentity("u1"))
	assert.True(t, autherr.IsStoreUnavailable(err))
}

func TestReconcile_EmptyIdentityRejected(t *testing.T) {
	engine := NewEngine(newStore(t))
	_, err := engine.Reconcile(context.Background(), &fakeSession{}, &VerifiedIdentity{Provider: models.ProviderGoogle})
	assert.ErrorIs(t, err, autherr.ErrValidation)
}

func TestReconcile_ConcurrentCallbacksCreateOneAccount(t *testing.T) {
	store := newStore(t)
	engine := NewEngine(store)

	const callbacks = 6
	var wg sync.WaitGroup
	results := make([]*Result, callbacks)
	errs := make([]error, callbacks)
	for i := 0; i < callbacks; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = engine.Reconcile(context.Background(), &fakeSession{}, googleIdentity("race"))
		}(i)
	}
	wg.Wait()

	var owner uint
	for i := range results {
		require.NoError(t, errs[i])
		if owner == 0 {
			owner = results[i].Account.ID
		}
		assert.Equal(t, owner, results[i].Account.ID)
	}

	accounts, identities := countRows(t, store)
	assert.EqualValues(t, 1, accounts)
	assert.EqualValues(t, 1, identities)
}

func newStore(t *testing.T) *repository.Factory {
	t.Helper()
	return testdb.Store(t)
}

func seedLocalAccount(t *testing.T, store *repository.Factory, email string) *models.Account {
	t.Helper()
	account, err := models.NewLocalAccount(email, "secret123", "")
	require.NoError(t, err)
	require.NoError(t, store.GetAccountRepository().Create(context.Background(), account))
	return account
}
