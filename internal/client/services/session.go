package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/skillswap/internal/client/client"
	"github.com/dmitrijs2005/skillswap/internal/client/models"
	"github.com/dmitrijs2005/skillswap/internal/client/tokenstore"
	"github.com/dmitrijs2005/skillswap/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

const (
	msgLoginFailed        = "Login failed"
	msgRegistrationFailed = "Registration failed"
)

// State is the authentication state of a SessionManager.
type State int

const (
	StateBootstrapping State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateBootstrapping:
		return "bootstrapping"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Session is a point-in-time copy of the session state.
type Session struct {
	CurrentUser *models.User
	Loading     bool
	LastError   string
}

// IsAuthenticated is derived from CurrentUser, never stored.
func (s Session) IsAuthenticated() bool {
	return s.CurrentUser != nil
}

// SessionManager owns the authenticated user and the lifecycle of the
// persisted token. Create one per process and call Bootstrap before use.
type SessionManager struct {
	client client.Client
	store  tokenstore.Store
	log    logging.Logger
	now    func() time.Time

	mu        sync.RWMutex
	state     State
	user      *models.User
	loading   bool
	lastError string
}

func NewSessionManager(c client.Client, store tokenstore.Store, log logging.Logger) *SessionManager {
	if log == nil {
		log = logging.Discard()
	}
	return &SessionManager{
		client:  c,
		store:   store,
		log:     log.With("component", "session"),
		now:     time.Now,
		state:   StateBootstrapping,
		loading: true,
	}
}

// Bootstrap restores the session from the persisted token. A token the
// server does not accept is removed silently; nothing is surfaced in
// LastError.
func (m *SessionManager) Bootstrap(ctx context.Context) {
	m.mu.Lock()
	m.state = StateBootstrapping
	m.loading = true
	m.mu.Unlock()

	token, err := m.store.Get(ctx)
	if err != nil {
		m.log.Warn(ctx, "reading persisted token failed, starting logged out", "error", err)
		token = ""
	}
	if token == "" {
		m.settle(nil)
		return
	}

	if exp, ok := tokenExpiry(token); ok && exp.Before(m.now()) {
		m.log.Info(ctx, "persisted token looks expired, asking the server", "exp", exp)
	}

	user, err := m.client.Me(ctx)
	if err != nil {
		m.log.Info(ctx, "persisted token rejected", "error", err)
		m.dropToken(ctx)
		m.settle(nil)
		return
	}
	m.log.Debug(ctx, "session restored", "user", user.Username)
	m.settle(user)
}

// Login authenticates with creds, persists the token and loads the profile.
// On failure no token from this attempt is kept and LastError holds the
// server detail or a generic message. An existing session whose token is
// still persisted stays authenticated.
func (m *SessionManager) Login(ctx context.Context, creds models.Credentials) error {
	m.mu.Lock()
	m.loading = true
	m.lastError = ""
	m.mu.Unlock()

	token, err := m.client.Login(ctx, creds)
	if err != nil {
		return m.loginFailed(ctx, err, false)
	}
	if err := m.store.Set(ctx, token); err != nil {
		return m.loginFailed(ctx, fmt.Errorf("persist token: %w", err), false)
	}

	user, err := m.client.Me(ctx)
	if err != nil {
		return m.loginFailed(ctx, err, true)
	}

	m.log.Info(ctx, "logged in", "user", user.Username)
	m.settle(user)
	return nil
}

// loginFailed records a failed attempt. A session that was already
// authenticated survives when its token is still persisted, i.e. this
// attempt neither replaced it nor had it purged by a 401.
func (m *SessionManager) loginFailed(ctx context.Context, err error, persisted bool) error {
	keep := false
	if persisted {
		m.dropToken(ctx)
	} else {
		token, gerr := m.store.Get(ctx)
		keep = gerr == nil && token != ""
	}

	m.mu.Lock()
	if !keep || m.user == nil {
		m.user = nil
		m.state = StateUnauthenticated
	}
	m.loading = false
	m.lastError = client.Message(err, msgLoginFailed)
	m.mu.Unlock()

	m.log.Warn(ctx, "login failed", "error", err)
	return fmt.Errorf("login: %w", err)
}

// Register creates an account. It never changes the authentication state;
// the user logs in separately afterwards.
func (m *SessionManager) Register(ctx context.Context, reg models.Registration) error {
	if err := reg.Validate(); err != nil {
		m.setError(err.Error())
		return err
	}

	m.mu.Lock()
	m.loading = true
	m.lastError = ""
	m.mu.Unlock()

	err := m.client.Register(ctx, reg)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if err != nil {
		m.lastError = client.Message(err, msgRegistrationFailed)
		m.log.Warn(ctx, "registration failed", "username", reg.Username, "error", err)
		return fmt.Errorf("register: %w", err)
	}
	m.log.Info(ctx, "registered", "username", reg.Username)
	return nil
}

// Logout forgets the token and the user. It is idempotent and makes no
// network call. The in-memory session is cleared even when the token store
// fails.
func (m *SessionManager) Logout(ctx context.Context) error {
	err := m.store.Delete(ctx)

	m.mu.Lock()
	m.user = nil
	m.lastError = ""
	m.state = StateUnauthenticated
	m.mu.Unlock()

	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// ClearError resets LastError only.
func (m *SessionManager) ClearError() {
	m.setError("")
}

// Revalidate re-checks the persisted token against the server without
// touching Loading or LastError. It reports whether the session is
// authenticated afterwards.
func (m *SessionManager) Revalidate(ctx context.Context) bool {
	token, err := m.store.Get(ctx)
	if err != nil {
		m.log.Warn(ctx, "reading persisted token failed", "error", err)
		token = ""
	}
	if token == "" {
		m.setUser(nil)
		return false
	}

	user, err := m.client.Me(ctx)
	if err != nil {
		m.log.Info(ctx, "revalidation failed", "error", err)
		m.dropToken(ctx)
		m.setUser(nil)
		return false
	}
	m.setUser(user)
	return true
}

// TokenExpiry reports the exp claim of the persisted token. ok is false
// when there is no token or it carries no readable expiry. The signature is
// not verified; only the server can do that.
func (m *SessionManager) TokenExpiry(ctx context.Context) (exp time.Time, ok bool, err error) {
	token, err := m.store.Get(ctx)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		return time.Time{}, false, nil
	}
	exp, ok = tokenExpiry(token)
	return exp, ok, nil
}

func (m *SessionManager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *SessionManager) Snapshot() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Session{
		CurrentUser: m.user,
		Loading:     m.loading,
		LastError:   m.lastError,
	}
}

// settle ends a bootstrap or login with the given user (nil means logged out).
func (m *SessionManager) settle(user *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	m.user = user
	if user != nil {
		m.state = StateAuthenticated
		return
	}
	m.state = StateUnauthenticated
	m.lastError = ""
}

func (m *SessionManager) setUser(user *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = user
	if user != nil {
		m.state = StateAuthenticated
	} else {
		m.state = StateUnauthenticated
	}
}

func (m *SessionManager) setError(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastError = msg
}

func (m *SessionManager) dropToken(ctx context.Context) {
	if err := m.store.Delete(ctx); err != nil {
		m.log.Warn(ctx, "failed to delete persisted token", "error", err)
	}
}

// tokenExpiry extracts exp from a JWT without verifying it.
func tokenExpiry(token string) (time.Time, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// IsUnauthorized reports whether err means the server no longer accepts the
// session, in which case callers should Revalidate.
func IsUnauthorized(err error) bool {
	return errors.Is(err, client.ErrUnauthorized)
}
