package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/codeforge/internal/client/models"
	"github.com/dmitrijs2005/codeforge/internal/client/repositories/kv"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_StoresCredentialAndUserFromClaims(t *testing.T) {
	b := newBackend(t)
	store := kv.NewMemoryRepository()
	m := b.newManager(store)
	ctx := context.Background()

	cred, err := m.Login(ctx, "admin", "secret")
	require.NoError(t, err)
	require.Equal(t, b.currentAccess(), cred.AccessToken)
	require.Equal(t, "r-login", cred.RefreshToken)
	require.True(t, m.Authenticated())

	want := &models.User{ID: 7, Username: "admin", IsAdmin: true}
	if diff := cmp.Diff(want, m.User()); diff != "" {
		t.Fatalf("user mismatch (-want +got):\n%s", diff)
	}
	require.True(t, m.IsAdmin())

	access, _ := store.Get(ctx, KeyAccess)
	refresh, _ := store.Get(ctx, KeyRefresh)
	rawUser, _ := store.Get(ctx, KeyUser)
	require.Equal(t, cred.AccessToken, string(access))
	require.Equal(t, "r-login", string(refresh))

	var stored models.User
	require.NoError(t, json.Unmarshal(rawUser, &stored))
	require.Equal(t, "admin", stored.Username)
}

func TestLogin_PrefersEmbeddedUser(t *testing.T) {
	b := newBackend(t, func(b *fakeBackend) {
		b.loginUser = map[string]any{"id": 42, "username": "alice", "email": "a@x.io", "is_superuser": true}
	})
	m := b.newManager(kv.NewMemoryRepository())

	_, err := m.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	want := &models.User{ID: 42, Username: "alice", Email: "a@x.io", IsAdmin: true}
	require.Equal(t, want, m.User())
}

func TestLogin_BadCredentials_AuthErrorWithServerMessage(t *testing.T) {
	b := newBackend(t)
	store := kv.NewMemoryRepository()
	m := b.newManager(store)

	_, err := m.Login(context.Background(), "bob", "wrong")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.True(t, IsAuth(err))
	require.Contains(t, err.Error(), "No active account")
	require.False(t, m.Authenticated())

	all, _ := store.List(context.Background())
	require.Empty(t, all)
}

func TestLogin_ServerDown_NetworkError(t *testing.T) {
	b := newBackend(t)
	m := New(b.baseURL(), kv.NewMemoryRepository(), WithHTTPClient(b.srv.Client()))
	b.srv.Close()

	_, err := m.Login(context.Background(), "bob", "secret")
	require.ErrorIs(t, err, ErrUnavailable)
	require.False(t, IsAuth(err))
	require.Equal(t, 0, StatusCode(err))
}

func TestRegister_FallsBackToLogin(t *testing.T) {
	b := newBackend(t)
	m := b.newManager(kv.NewMemoryRepository())

	cred, err := m.Register(context.Background(), "newbie", "secret", "n@x.io")
	require.NoError(t, err)
	require.NotEmpty(t, cred.AccessToken)
	require.EqualValues(t, 1, b.loginCalls.Load())
	require.Equal(t, "newbie", m.User().Username)
}

func TestRegister_WithTokens_SkipsLogin(t *testing.T) {
	b := newBackend(t, func(b *fakeBackend) { b.registerToken = true })
	m := b.newManager(kv.NewMemoryRepository())

	_, err := m.Register(context.Background(), "newbie", "secret", "")
	require.NoError(t, err)
	require.EqualValues(t, 0, b.loginCalls.Load())
	require.True(t, m.Authenticated())
}

func TestRegister_Rejected(t *testing.T) {
	b := newBackend(t)
	m := b.newManager(kv.NewMemoryRepository())

	_, err := m.Register(context.Background(), "taken", "secret", "")
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Contains(t, err.Error(), "Username already exists")
}

func TestLogout_ClearsMemoryAndStorage_Idempotent(t *testing.T) {
	b := newBackend(t)
	store := kv.NewMemoryRepository()
	require.NoError(t, store.Set(context.Background(), "oj:split:leftPct", []byte("40")))
	m := b.newManager(store)
	ctx := context.Background()

	_, err := m.Login(ctx, "bob", "secret")
	require.NoError(t, err)

	m.Logout(ctx)
	m.Logout(ctx)

	require.False(t, m.Authenticated())
	require.Nil(t, m.User())

	all, _ := store.List(ctx)
	require.Equal(t, map[string][]byte{"oj:split:leftPct": []byte("40")}, all)
}

func TestLogout_WithCancelledContext_StillClearsStorage(t *testing.T) {
	store := kv.NewMemoryRepository()
	seedSession(t, store, "a", "r")
	m := New("http://unused", store)
	require.NoError(t, m.Restore(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.Logout(ctx)

	all, _ := store.List(context.Background())
	require.Empty(t, all)
}

func TestRestore_LoadsTokensAndUser(t *testing.T) {
	store := kv.NewMemoryRepository()
	ctx := context.Background()
	seedSession(t, store, "a1", "r1")
	require.NoError(t, store.Set(ctx, KeyUser, []byte(`{"id":3,"username":"carol","is_admin":false}`)))

	m := New("http://unused", store)
	require.NoError(t, m.Restore(ctx))

	require.Equal(t, models.Credential{AccessToken: "a1", RefreshToken: "r1"}, m.Credential())
	require.Equal(t, &models.User{ID: 3, Username: "carol"}, m.User())
}

func TestRestore_CorruptUserFallsBackToClaims(t *testing.T) {
	store := kv.NewMemoryRepository()
	ctx := context.Background()
	access := mintToken(t, jwt.MapClaims{"user_id": 5, "username": "dave"})
	seedSession(t, store, access, "r1")
	require.NoError(t, store.Set(ctx, KeyUser, []byte(`{not json`)))

	m := New("http://unused", store)
	require.NoError(t, m.Restore(ctx))

	require.True(t, m.Authenticated())
	require.Equal(t, &models.User{ID: 5, Username: "dave"}, m.User())
}

func TestSetUser_IgnoredWhenLoggedOut(t *testing.T) {
	store := kv.NewMemoryRepository()
	m := New("http://unused", store)
	ctx := context.Background()

	m.SetUser(ctx, &models.User{ID: 1, Username: "ghost"})
	require.Nil(t, m.User())

	v, _ := store.Get(ctx, KeyUser)
	require.Nil(t, v)
}

func TestSetUser_PersistsAndCopies(t *testing.T) {
	store := kv.NewMemoryRepository()
	seedSession(t, store, "a", "r")
	m := New("http://unused", store)
	ctx := context.Background()
	require.NoError(t, m.Restore(ctx))

	u := &models.User{ID: 1, Username: "erin"}
	m.SetUser(ctx, u)
	u.Username = "mutated"

	require.Equal(t, "erin", m.User().Username)
	raw, _ := store.Get(ctx, KeyUser)
	require.Contains(t, string(raw), `"erin"`)
}

func TestAccessExpiry(t *testing.T) {
	store := kv.NewMemoryRepository()
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	seedSession(t, store, mintToken(t, jwt.MapClaims{"exp": exp.Unix()}), "r")
	m := New("http://unused", store)
	require.NoError(t, m.Restore(context.Background()))

	got, ok := m.AccessExpiry()
	require.True(t, ok)
	require.True(t, exp.Equal(got))

	m.Logout(context.Background())
	_, ok = m.AccessExpiry()
	require.False(t, ok)
}

func TestDo_AttachesBearerAndRequestID(t *testing.T) {
	b := newBackend(t)
	m := b.newManager(kv.NewMemoryRepository())
	ctx := context.Background()
	_, err := m.Login(ctx, "bob", "secret")
	require.NoError(t, err)

	resp, err := m.Do(ctx, http.MethodGet, "/problems/", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []models.Problem
	require.NoError(t, resp.Decode(&list))
	require.Len(t, list, 1)
	require.Equal(t, "Two Sum", list[0].Title)

	_, err = m.Do(ctx, http.MethodGet, "/problems/", nil)
	require.NoError(t, err)

	ids := b.recordedRequestIDs()
	require.Len(t, ids, 2)
	require.NotEmpty(t, ids[0])
	require.NotEqual(t, ids[0], ids[1])
	require.Zero(t, b.refreshCalls.Load())
}

func TestDo_NoCredential_401_ImmediateAuthErrorWithoutRefresh(t *testing.T) {
	b := newBackend(t)
	m := b.newManager(kv.NewMemoryRepository())

	_, err := m.Do(context.Background(), http.MethodGet, "/problems/", nil)
	require.Error(t, err)
	require.True(t, IsAuth(err))
	require.Zero(t, b.refreshCalls.Load())
}

func TestDo_401_RefreshesAndReplaysSameBody(t *testing.T) {
	b := newBackend(t)
	store := kv.NewMemoryRepository()
	seedSession(t, store, "expired", "r-0")
	m := b.newManager(store)
	ctx := context.Background()
	require.NoError(t, m.Restore(ctx))

	body := map[string]any{"code": "print(1)", "language": "python"}
	_, err := m.Do(ctx, http.MethodPost, "/problems/1/run/", body)
	require.NoError(t, err)

	require.EqualValues(t, 1, b.refreshCalls.Load())
	bodies := b.recordedBodies()
	require.Len(t, bodies, 2)
	require.JSONEq(t, string(bodies[0]), string(bodies[1]))
	require.JSONEq(t, `{"code":"print(1)","language":"python"}`, string(bodies[1]))
	require.Equal(t, "r-0", b.lastRefreshIn.Load())

	require.Equal(t, b.currentAccess(), m.Credential().AccessToken)
	stored, _ := store.Get(ctx, KeyAccess)
	require.Equal(t, b.currentAccess(), string(stored))
}

func TestDo_RotatedRefreshTokenOverwritesStored(t *testing.T) {
	b := newBackend(t, func(b *fakeBackend) { b.rotateRefresh = true })
	store := kv.NewMemoryRepository()
	seedSession(t, store, "expired", "r-0")
	m := b.newManager(store)
	ctx := context.Background()
	require.NoError(t, m.Restore(ctx))

	_, err := m.Do(ctx, http.MethodGet, "/problems/", nil)
	require.NoError(t, err)

	require.Equal(t, "r-1", m.Credential().RefreshToken)
	stored, _ := store.Get(ctx, KeyRefresh)
	require.Equal(t, "r-1", string(stored))
}

func TestDo_MissingRefreshToken_ClearsSession(t *testing.T) {
	b := newBackend(t)
	store := kv.NewMemoryRepository()
	require.NoError(t, store.Set(context.Background(), KeyAccess, []byte("expired")))
	m := b.newManager(store)
	require.NoError(t, m.Restore(context.Background()))

	_, err := m.Do(context.Background(), http.MethodGet, "/problems/", nil)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.ErrorIs(t, err, ErrSessionExpired)
	require.Zero(t, b.refreshCalls.Load())
	require.False(t, m.Authenticated())
}

func TestDo_SecondUnauthorized_ForcesLogout(t *testing.T) {
	b := newBackend(t)
	store := kv.NewMemoryRepository()
	seedSession(t, store, "expired", "r-0")
	m := b.newManager(store)
	ctx := context.Background()
	require.NoError(t, m.Restore(ctx))

	_, err := m.Do(ctx, http.MethodGet, "/always401/", nil)
	require.True(t, IsAuth(err))
	require.EqualValues(t, 1, b.refreshCalls.Load())
	require.False(t, m.Authenticated())

	all, _ := store.List(ctx)
	require.Empty(t, all)
}

func TestDo_ServerError_NetworkErrorWithMessage(t *testing.T) {
	b := newBackend(t)
	m := b.newManager(kv.NewMemoryRepository())

	_, err := m.Do(context.Background(), http.MethodGet, "/boom/", nil)
	require.ErrorIs(t, err, ErrUnavailable)

	var ne *NetworkError
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, http.StatusInternalServerError, ne.StatusCode)
	assert.Equal(t, "GET /boom/", ne.Endpoint)
	assert.Equal(t, "database is down", ne.Message)
}

func TestDo_UnencodableBody(t *testing.T) {
	m := New("http://unused", kv.NewMemoryRepository())
	_, err := m.Do(context.Background(), http.MethodPost, "/x/", map[string]any{"f": func() {}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "encode POST /x/")
}

func TestDo_RateLimitHonoursContext(t *testing.T) {
	b := newBackend(t)
	m := b.newManager(kv.NewMemoryRepository(), WithRateLimit(1))
	ctx := context.Background()

	_, err := m.Do(ctx, http.MethodGet, "/boom/", nil)
	require.Error(t, err)

	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = m.Do(short, http.MethodGet, "/boom/", nil)
	var ne *NetworkError
	require.True(t, errors.As(err, &ne))
	require.Equal(t, "rate limiter", ne.Message)
}

func TestConcurrentUnauthorized_SingleRefresh(t *testing.T) {
	verifyNoLeaks(t)

	tests := []struct {
		name        string
		failRefresh bool
	}{
		{name: "refresh succeeds", failRefresh: false},
		{name: "refresh fails", failRefresh: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const n = 8

			gate := make(chan struct{})
			b := newBackend(t, func(b *fakeBackend) {
				b.failRefresh = tt.failRefresh
				b.refreshGate = gate
			})

			store := kv.NewMemoryRepository()
			seedSession(t, store, "expired", "r-0")
			m := b.newManager(store)
			ctx := context.Background()
			require.NoError(t, m.Restore(ctx))

			errs := make([]error, n)
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = m.Do(ctx, http.MethodGet, "/problems/", nil)
				}(i)
			}

			require.Eventually(t, func() bool { return b.unauthorized.Load() == n }, 5*time.Second, 5*time.Millisecond)
			close(gate)
			wg.Wait()

			require.EqualValues(t, 1, b.refreshCalls.Load())
			for i, err := range errs {
				if tt.failRefresh {
					require.Truef(t, IsAuth(err), "call %d: %v", i, err)
				} else {
					require.NoErrorf(t, err, "call %d", i)
				}
			}

			if tt.failRefresh {
				require.False(t, m.Authenticated())
				all, _ := store.List(ctx)
				require.Empty(t, all)
			} else {
				require.Equal(t, b.currentAccess(), m.Credential().AccessToken)
			}
		})
	}
}

func TestLogoutDuringRefresh_SessionStaysCleared(t *testing.T) {
	verifyNoLeaks(t)

	for _, failRefresh := range []bool{false, true} {
		name := "refresh succeeds"
		if failRefresh {
			name = "refresh fails"
		}
		t.Run(name, func(t *testing.T) {
			gate := make(chan struct{})
			entered := make(chan struct{}, 1)
			b := newBackend(t, func(b *fakeBackend) {
				b.failRefresh = failRefresh
				b.refreshGate = gate
				b.refreshEntered = entered
			})

			store := kv.NewMemoryRepository()
			seedSession(t, store, "expired", "r-0")
			m := b.newManager(store)
			ctx := context.Background()
			require.NoError(t, m.Restore(ctx))

			done := make(chan error, 1)
			go func() {
				_, err := m.Do(ctx, http.MethodGet, "/problems/", nil)
				done <- err
			}()

			select {
			case <-entered:
			case <-time.After(5 * time.Second):
				t.Fatal("refresh never started")
			}

			m.Logout(ctx)
			close(gate)

			err := <-done
			require.True(t, IsAuth(err), "got %v", err)
			require.False(t, m.Authenticated())
			require.Nil(t, m.User())

			all, _ := store.List(ctx)
			require.Empty(t, all)
		})
	}
}

func TestRefreshWaiterCancellation_DoesNotFailOthers(t *testing.T) {
	verifyNoLeaks(t)

	gate := make(chan struct{})
	b := newBackend(t, func(b *fakeBackend) { b.refreshGate = gate })

	store := kv.NewMemoryRepository()
	seedSession(t, store, "expired", "r-0")
	m := b.newManager(store)
	bg := context.Background()
	require.NoError(t, m.Restore(bg))

	cctx, cancel := context.WithCancel(bg)
	cancelled := make(chan error, 1)
	patient := make(chan error, 1)

	go func() {
		_, err := m.Do(cctx, http.MethodGet, "/problems/", nil)
		cancelled <- err
	}()
	go func() {
		_, err := m.Do(bg, http.MethodGet, "/problems/", nil)
		patient <- err
	}()

	require.Eventually(t, func() bool { return b.unauthorized.Load() == 2 }, 5*time.Second, 5*time.Millisecond)
	cancel()
	require.ErrorIs(t, <-cancelled, context.Canceled)

	close(gate)
	require.NoError(t, <-patient)
	require.EqualValues(t, 1, b.refreshCalls.Load())
	require.True(t, m.Authenticated())
}
