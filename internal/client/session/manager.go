package session

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/codeforge/internal/client/models"
	"github.com/dmitrijs2005/codeforge/internal/client/repositories/kv"
	"github.com/dmitrijs2005/codeforge/internal/logging"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Storage keys.
const (
	KeyAccess  = "access"
	KeyRefresh = "refresh"
	KeyUser    = "user"
)

const DefaultTimeout = 15 * time.Second

// Requester performs API calls relative to the backend base URL. A nil body
// sends no payload; anything else is encoded as JSON.
type Requester interface {
	Do(ctx context.Context, method, path string, body any) (*Response, error)
}

// Manager is the session owner. The zero value is not usable; call New.
type Manager struct {
	baseURL    string
	httpClient *http.Client
	store      kv.Repository
	log        logging.Logger
	limiter    *rate.Limiter
	timeout    time.Duration

	mu    sync.RWMutex
	cred  models.Credential
	user  *models.User
	epoch uint64

	refreshes singleflight.Group
}

type Option func(*Manager)

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithRateLimit caps outgoing requests to perSecond, with an equal burst.
// Zero or less disables limiting.
func WithRateLimit(perSecond int) Option {
	return func(m *Manager) {
		if perSecond > 0 {
			m.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
		} else {
			m.limiter = nil
		}
	}
}

// WithTimeout bounds every single HTTP exchange, including the refresh call.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) {
		if c != nil {
			m.httpClient = c
		}
	}
}

// New builds a Manager for the API at baseURL persisting into store.
func New(baseURL string, store kv.Repository, opts ...Option) *Manager {
	m := &Manager{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		store:      store,
		log:        logging.Discard(),
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("component", "session")
	return m
}

// Restore loads a previously persisted session. A corrupt cached user is
// dropped; it never invalidates the tokens.
func (m *Manager) Restore(ctx context.Context) error {
	values, err := m.store.List(ctx)
	if err != nil {
		return err
	}

	cred := models.Credential{
		AccessToken:  string(values[KeyAccess]),
		RefreshToken: string(values[KeyRefresh]),
	}

	var user *models.User
	if raw := values[KeyUser]; len(raw) > 0 {
		var u models.User
		if err := json.Unmarshal(raw, &u); err != nil {
			m.log.Warn(ctx, "dropping unreadable cached user", "error", err)
		} else {
			user = &u
		}
	}
	if user == nil && !cred.Empty() {
		user = userFromToken(cred.AccessToken)
	}

	m.mu.Lock()
	m.cred = cred
	m.user = user
	m.epoch++
	m.mu.Unlock()

	if !cred.Empty() {
		m.log.Info(ctx, "session restored", "user", user.Name())
	}
	return nil
}

// Credential returns a copy of the current token pair.
func (m *Manager) Credential() models.Credential {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cred
}

// User returns a copy of the cached user, or nil.
func (m *Manager) User() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.cred.Empty()
}

// IsAdmin reports whether the cached user has staff rights. The backend
// remains the authority; this only drives hints.
func (m *Manager) IsAdmin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil && m.user.IsAdmin
}

// SetUser replaces the cached user. It is ignored when no session exists,
// so a late profile fetch cannot resurrect a logged-out user.
func (m *Manager) SetUser(ctx context.Context, u *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cred.Empty() {
		return
	}
	if u == nil {
		m.user = nil
		if err := m.store.Delete(ctx, KeyUser); err != nil {
			m.log.Warn(ctx, "failed to delete cached user", "error", err)
		}
		return
	}

	cp := *u
	m.user = &cp
	raw, err := json.Marshal(cp)
	if err != nil {
		m.log.Warn(ctx, "failed to encode user", "error", err)
		return
	}
	if err := m.store.Set(ctx, KeyUser, raw); err != nil {
		m.log.Warn(ctx, "failed to persist cached user", "error", err)
	}
}

// AccessExpiry returns the exp claim of the current access token.
func (m *Manager) AccessExpiry() (time.Time, bool) {
	return tokenExpiry(m.Credential().AccessToken)
}

// Logout clears the session in memory and storage. It never fails.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	had := !m.cred.Empty()
	m.resetLocked(ctx)
	if had {
		m.log.Info(ctx, "logged out")
	}
}

// establish installs a fresh credential after login or register.
func (m *Manager) establish(ctx context.Context, cred models.Credential, user *models.User) {
	if user == nil {
		user = userFromToken(cred.AccessToken)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.epoch++
	m.refreshes.Forget(refreshKey)
	m.cred = cred
	m.user = user

	values := map[string][]byte{
		KeyAccess:  []byte(cred.AccessToken),
		KeyRefresh: []byte(cred.RefreshToken),
	}
	if user != nil {
		if raw, err := json.Marshal(user); err == nil {
			values[KeyUser] = raw
		}
	}
	sctx := context.WithoutCancel(ctx)
	if err := m.store.SetMany(sctx, values); err != nil {
		m.log.Warn(ctx, "failed to persist session", "error", err)
	}
	if user == nil {
		if err := m.store.Delete(sctx, KeyUser); err != nil {
			m.log.Warn(ctx, "failed to delete cached user", "error", err)
		}
	}
}

// expireIf force-logs-out the session when match still holds for it.
func (m *Manager) expireIf(ctx context.Context, match func(cred models.Credential, epoch uint64) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cred.Empty() || !match(m.cred, m.epoch) {
		return
	}
	m.resetLocked(ctx)
	m.log.Warn(ctx, "session expired, credentials cleared")
}

// resetLocked wipes the session. m.mu must be held for writing. Storage is
// cleared even if ctx is already cancelled.
func (m *Manager) resetLocked(ctx context.Context) {
	m.epoch++
	m.refreshes.Forget(refreshKey)
	m.cred = models.Credential{}
	m.user = nil
	if err := m.store.DeleteMany(context.WithoutCancel(ctx), KeyAccess, KeyRefresh, KeyUser); err != nil {
		m.log.Warn(ctx, "failed to clear stored session", "error", err)
	}
}

func sameEpoch(epoch uint64) func(models.Credential, uint64) bool {
	return func(_ models.Credential, current uint64) bool { return current == epoch }
}

func sameAccess(token string) func(models.Credential, uint64) bool {
	return func(cred models.Credential, _ uint64) bool { return cred.AccessToken == token }
}

func (m *Manager) snapshot() (models.Credential, uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cred, m.epoch
}
