package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/codeforge/internal/client/repositories/kv"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// ---- helpers ----

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func verifyNoLeaks(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		goleak.VerifyNone(t,
			goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
			goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
		)
	})
}

// ---- fake backend ----

// fakeBackend imitates the token endpoints and a few protected resources.
type fakeBackend struct {
	t   *testing.T
	srv *httptest.Server

	mu            sync.Mutex
	access        string
	refresh       string
	rotateRefresh bool
	failRefresh   bool
	loginUser     map[string]any
	registerToken bool
	bodies        [][]byte
	requestIDs    []string

	refreshGate    chan struct{}
	refreshEntered chan struct{}

	refreshCalls  atomic.Int32
	loginCalls    atomic.Int32
	unauthorized  atomic.Int32
	lastRefreshIn atomic.Value
}

// newBackend starts the fake server. Behaviour knobs are applied through
// opts before the server accepts connections.
func newBackend(t *testing.T, opts ...func(*fakeBackend)) *fakeBackend {
	t.Helper()
	b := &fakeBackend{t: t, access: "valid-access", refresh: "r-0"}
	for _, opt := range opts {
		opt(b)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/token/", b.handleLogin)
	mux.HandleFunc("/api/register/", b.handleRegister)
	mux.HandleFunc("/api/token/refresh/", b.handleRefresh)
	mux.HandleFunc("/api/problems/", b.handleProtected)
	mux.HandleFunc("/api/always401/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "nope"})
	})
	mux.HandleFunc("/api/boom/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "database is down"})
	})

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) baseURL() string { return b.srv.URL + "/api" }

func (b *fakeBackend) newManager(store kv.Repository, opts ...Option) *Manager {
	opts = append([]Option{WithHTTPClient(b.srv.Client()), WithTimeout(5 * time.Second)}, opts...)
	return New(b.baseURL(), store, opts...)
}

func (b *fakeBackend) currentAccess() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.access
}

func (b *fakeBackend) recordedBodies() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]byte(nil), b.bodies...)
}

func (b *fakeBackend) recordedRequestIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requestIDs...)
}

func (b *fakeBackend) issue(w http.ResponseWriter, username string) {
	access := mintToken(b.t, jwt.MapClaims{
		"user_id":  7,
		"username": username,
		"is_staff": username == "admin",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	b.mu.Lock()
	b.access = access
	b.refresh = "r-login"
	user := b.loginUser
	b.mu.Unlock()

	resp := map[string]any{"access": access, "refresh": "r-login"}
	if user != nil {
		resp["user"] = user
	}
	writeJSON(w, http.StatusOK, resp)
}

func (b *fakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	b.loginCalls.Add(1)
	var in struct{ Username, Password string }
	_ = json.NewDecoder(r.Body).Decode(&in)
	if in.Password != "secret" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "No active account found with the given credentials"})
		return
	}
	b.issue(w, in.Username)
}

func (b *fakeBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct{ Username, Password, Email string }
	_ = json.NewDecoder(r.Body).Decode(&in)
	if in.Username == "taken" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Username already exists"})
		return
	}
	b.mu.Lock()
	withTokens := b.registerToken
	b.mu.Unlock()
	if withTokens {
		b.issue(w, in.Username)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": 9, "username": in.Username})
}

func (b *fakeBackend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	n := b.refreshCalls.Add(1)
	if b.refreshEntered != nil {
		select {
		case b.refreshEntered <- struct{}{}:
		default:
		}
	}
	if b.refreshGate != nil {
		<-b.refreshGate
	}

	var in struct{ Refresh string }
	_ = json.NewDecoder(r.Body).Decode(&in)
	b.lastRefreshIn.Store(in.Refresh)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failRefresh || in.Refresh != b.refresh {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Token is invalid or expired"})
		return
	}
	b.access = fmt.Sprintf("access-%d", n)
	resp := map[string]any{"access": b.access}
	if b.rotateRefresh {
		b.refresh = fmt.Sprintf("r-%d", n)
		resp["refresh"] = b.refresh
	}
	writeJSON(w, http.StatusOK, resp)
}

func (b *fakeBackend) handleProtected(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.bodies = append(b.bodies, body)
	b.requestIDs = append(b.requestIDs, r.Header.Get("X-Request-ID"))
	valid := r.Header.Get("Authorization") == "Bearer "+b.access
	b.mu.Unlock()

	if !valid {
		b.unauthorized.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Given token not valid for any token type"})
		return
	}
	writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "title": "Two Sum"}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// seedSession stores a token pair the backend will reject, so the first
// protected call hits 401.
func seedSession(t *testing.T, store kv.Repository, access, refresh string) {
	t.Helper()
	require.NoError(t, store.SetMany(context.Background(), map[string][]byte{
		KeyAccess:  []byte(access),
		KeyRefresh: []byte(refresh),
	}))
}
