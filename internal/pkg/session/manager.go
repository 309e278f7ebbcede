package session

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/ManuelReschke/HarooHub/internal/pkg/accounts"
	"github.com/ManuelReschke/HarooHub/internal/pkg/autherr"
)

// Session keys
const (
	KeyAccountID = "account_id"
	KeyReturnTo  = "return_to"
	// KeyCSRF is owned by the csrf middleware.
	KeyCSRF = "csrf_token"
)

const (
	localsState     = "session_state"
	localsPostLogin = "post_login_redirect"
)

// State is the read-only view of a session a request works with.
type State struct {
	ID        string
	AccountID uint
	ReturnTo  string
}

// Authenticated reports whether the session is bound to an account.
func (s State) Authenticated() bool {
	return s.AccountID != 0
}

// Manager wraps the fiber session store. Every call loads the session, applies one change and
// saves it, so concurrent requests of the same browser overwrite whole records (last writer wins).
type Manager struct {
	store *session.Store
}

func NewManager(store *session.Store) *Manager {
	return &Manager{store: store}
}

// Store exposes the underlying store for the csrf middleware.
func (m *Manager) Store() *session.Store {
	return m.store
}

func (m *Manager) get(c *fiber.Ctx) (*session.Session, error) {
	sess, err := m.store.Get(c)
	if err != nil {
		return nil, autherr.StoreUnavailable("session", err)
	}
	return sess, nil
}

func save(sess *session.Session) error {
	return autherr.StoreUnavailable("session", sess.Save())
}

func stateOf(sess *session.Session) State {
	st := State{ID: sess.ID()}
	if id, ok := sess.Get(KeyAccountID).(uint); ok {
		st.AccountID = id
	}
	if rt, ok := sess.Get(KeyReturnTo).(string); ok {
		st.ReturnTo = rt
	}
	return st
}

// Resolve loads the request's session or starts an anonymous one. A new session is persisted
// right away so the client receives its cookie.
func (m *Manager) Resolve(c *fiber.Ctx) (State, error) {
	sess, err := m.get(c)
	if err != nil {
		return State{}, err
	}
	st := stateOf(sess)
	if sess.Fresh() {
		if err := save(sess); err != nil {
			return State{}, err
		}
	}
	c.Locals(localsState, st)
	return st, nil
}

// Current returns the state captured by Resolve for this request.
func (m *Manager) Current(c *fiber.Ctx) State {
	st, _ := c.Locals(localsState).(State)
	return st
}

// AccountID returns the authenticated account of the request or 0.
func (m *Manager) AccountID(c *fiber.Ctx) uint {
	return m.Current(c).AccountID
}

// SetReturnTo remembers where to send the user after login.
func (m *Manager) SetReturnTo(c *fiber.Ctx, path string) error {
	sess, err := m.get(c)
	if err != nil {
		return err
	}
	sess.Set(KeyReturnTo, path)
	return save(sess)
}

// Authenticate binds the session to accountID under a new session id. The pending return path
// is consumed and kept for ConsumeReturnTo.
func (m *Manager) Authenticate(c *fiber.Ctx, accountID uint) error {
	sess, err := m.get(c)
	if err != nil {
		return err
	}
	returnTo, _ := sess.Get(KeyReturnTo).(string)
	sess.Delete(KeyReturnTo)
	if err := sess.Regenerate(); err != nil {
		return autherr.StoreUnavailable("session", err)
	}
	sess.Set(KeyAccountID, accountID)
	if err := save(sess); err != nil {
		return err
	}

	c.Locals(localsPostLogin, returnTo)
	st := m.Current(c)
	st.AccountID = accountID
	st.ReturnTo = ""
	c.Locals(localsState, st)
	fiberlog.Debugf("[Session] Account %d signed in", accountID)
	return nil
}

// ConsumeReturnTo returns the remembered destination and clears it, or fallback when there is
// none. After Authenticate the path it already consumed is used.
func (m *Manager) ConsumeReturnTo(c *fiber.Ctx, fallback string) (string, error) {
	path, ok := c.Locals(localsPostLogin).(string)
	if !ok {
		sess, err := m.get(c)
		if err != nil {
			return "", err
		}
		path, _ = sess.Get(KeyReturnTo).(string)
		if path != "" {
			sess.Delete(KeyReturnTo)
			if err := save(sess); err != nil {
				return "", err
			}
		}
		c.Locals(localsPostLogin, path)
	}
	if !IsLocalPath(path) {
		return fallback, nil
	}
	return path, nil
}

// Destroy deletes the session record and expires the cookie.
func (m *Manager) Destroy(c *fiber.Ctx) error {
	sess, err := m.get(c)
	if err != nil {
		return err
	}
	if err := sess.Destroy(); err != nil {
		return autherr.StoreUnavailable("session", err)
	}
	c.Locals(localsState, State{})
	return nil
}

// Binder adapts the request session to the reconciliation engine.
func (m *Manager) Binder(c *fiber.Ctx) accounts.SessionBinder {
	return &binder{m: m, c: c}
}

type binder struct {
	m *Manager
	c *fiber.Ctx
}

func (b *binder) AccountID() uint { return b.m.AccountID(b.c) }

func (b *binder) Authenticate(accountID uint) error { return b.m.Authenticate(b.c, accountID) }

// IsLocalPath accepts absolute paths on this host only.
func IsLocalPath(path string) bool {
	return strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "//") && !strings.HasPrefix(path, "/\\")
}
