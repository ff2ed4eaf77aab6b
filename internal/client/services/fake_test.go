package services

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/codeforge/internal/client/models"
	"github.com/dmitrijs2005/codeforge/internal/client/session"
)

// ---- fake requester ----

type fakeRoute struct {
	body string
	err  error
}

// fakeAPI implements session.Requester with canned responses keyed by
// "METHOD /path". Unknown routes answer 404.
type fakeAPI struct {
	mu     sync.Mutex
	routes map[string]fakeRoute

	Calls    []string
	LastBody map[string]any
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{routes: map[string]fakeRoute{}}
}

func (f *fakeAPI) on(method, path, body string) *fakeAPI {
	f.routes[method+" "+path] = fakeRoute{body: body}
	return f
}

func (f *fakeAPI) fail(method, path string, err error) *fakeAPI {
	f.routes[method+" "+path] = fakeRoute{err: err}
	return f
}

func (f *fakeAPI) Do(ctx context.Context, method, path string, body any) (*session.Response, error) {
	key := method + " " + path

	f.mu.Lock()
	f.Calls = append(f.Calls, key)
	if body != nil {
		raw, _ := json.Marshal(body)
		f.LastBody = map[string]any{}
		_ = json.Unmarshal(raw, &f.LastBody)
	}
	r, ok := f.routes[key]
	f.mu.Unlock()

	if !ok {
		return nil, &session.NetworkError{StatusCode: http.StatusNotFound, Endpoint: key, Message: "not found"}
	}
	if r.err != nil {
		return nil, r.err
	}
	return &session.Response{StatusCode: http.StatusOK, Body: []byte(r.body)}, nil
}

func (f *fakeAPI) called(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Calls {
		if c == key {
			return true
		}
	}
	return false
}

var errSessionGone = &session.AuthError{Message: "token refresh failed", Err: session.ErrSessionExpired}

// ---- fake session ----

type fakeSession struct {
	LoginErr    error
	RegisterErr error
	LoginUser   *models.User

	user *models.User

	LastLoginUser     string
	LastLoginPassword string
	LastRegisterEmail string
	LogoutCalls       int
}

func (f *fakeSession) Login(ctx context.Context, username, password string) (models.Credential, error) {
	f.LastLoginUser = username
	f.LastLoginPassword = password
	if f.LoginErr != nil {
		return models.Credential{}, f.LoginErr
	}
	f.user = f.LoginUser
	return models.Credential{AccessToken: "a", RefreshToken: "r"}, nil
}

func (f *fakeSession) Register(ctx context.Context, username, password, email string) (models.Credential, error) {
	f.LastRegisterEmail = email
	if f.RegisterErr != nil {
		return models.Credential{}, f.RegisterErr
	}
	return f.Login(ctx, username, password)
}

func (f *fakeSession) Logout(ctx context.Context) {
	f.LogoutCalls++
	f.user = nil
}

func (f *fakeSession) User() *models.User { return f.user }

func (f *fakeSession) SetUser(ctx context.Context, u *models.User) { f.user = u }

func (f *fakeSession) Authenticated() bool { return f.user != nil }
