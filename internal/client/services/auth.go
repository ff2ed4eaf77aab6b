package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/codeforge/internal/client/models"
	"github.com/dmitrijs2005/codeforge/internal/client/session"
	"github.com/dmitrijs2005/codeforge/internal/logging"
)

// Session is the part of session.Manager the auth service drives.
type Session interface {
	Login(ctx context.Context, username, password string) (models.Credential, error)
	Register(ctx context.Context, username, password, email string) (models.Credential, error)
	Logout(ctx context.Context)
	User() *models.User
	SetUser(ctx context.Context, u *models.User)
	Authenticated() bool
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login / Register: start a session and make sure a user is cached.
//   - Logout: always succeeds.
//   - CurrentUser: the cached user, nil when logged out.
//   - Authenticated: whether a session is held, cached user or not.
//   - LoadProfile: refresh the cached user from the server.
type AuthService interface {
	Login(ctx context.Context, username string, password []byte) (*models.User, error)
	Register(ctx context.Context, username string, password []byte, email string) (*models.User, error)
	Logout(ctx context.Context)
	CurrentUser() *models.User
	Authenticated() bool
	LoadProfile(ctx context.Context) (*models.User, error)
}

type authService struct {
	sess session.Requester
	auth Session
	log  logging.Logger
}

// NewAuthService binds the service to the session owner and the request
// pipeline. With a *session.Manager both arguments are the same value.
func NewAuthService(auth Session, api session.Requester, log logging.Logger) AuthService {
	return &authService{auth: auth, sess: api, log: log}
}

func validateCredentials(username string, password []byte) error {
	if strings.TrimSpace(username) == "" {
		return &session.ValidationError{Field: "username", Message: "is required"}
	}
	if len(password) == 0 {
		return &session.ValidationError{Field: "password", Message: "is required"}
	}
	return nil
}

func (a *authService) Login(ctx context.Context, username string, password []byte) (*models.User, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	if _, err := a.auth.Login(ctx, username, string(password)); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return a.ensureUser(ctx, username), nil
}

func (a *authService) Register(ctx context.Context, username string, password []byte, email string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if email != "" && !strings.Contains(email, "@") {
		return nil, &session.ValidationError{Field: "email", Message: "is not a valid address"}
	}

	if _, err := a.auth.Register(ctx, username, string(password), email); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return a.ensureUser(ctx, username), nil
}

// ensureUser makes sure the cache holds a username. Tokens often carry only
// user_id, so a nameless cached user is completed from the profile, or else
// from the name the user typed. A failed profile fetch keeps the session.
func (a *authService) ensureUser(ctx context.Context, username string) *models.User {
	cached := a.auth.User()
	if cached != nil && cached.Username != "" {
		return cached
	}

	u, err := a.LoadProfile(ctx)
	if err == nil && u.Username != "" {
		return u
	}
	if err != nil {
		a.log.Warn(ctx, "profile fetch failed, caching username only", "error", err)
	}

	fallback := &models.User{Username: username}
	if cached != nil {
		fallback.ID = cached.ID
		fallback.IsAdmin = cached.IsAdmin
	}
	a.auth.SetUser(ctx, fallback)
	return a.auth.User()
}

func (a *authService) Logout(ctx context.Context) {
	a.auth.Logout(ctx)
}

func (a *authService) CurrentUser() *models.User {
	return a.auth.User()
}

func (a *authService) Authenticated() bool {
	return a.auth.Authenticated()
}

func (a *authService) LoadProfile(ctx context.Context) (*models.User, error) {
	resp, err := a.sess.Do(ctx, http.MethodGet, summaryPath, nil)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	var payload struct {
		User json.RawMessage `json:"user"`
	}
	if err := resp.Decode(&payload); err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	u := session.ParseUser(payload.User)
	if u == nil {
		return nil, fmt.Errorf("load profile: response has no user")
	}

	if cached := a.auth.User(); cached != nil && !u.IsAdmin {
		u.IsAdmin = cached.IsAdmin
	}
	a.auth.SetUser(ctx, u)
	return u, nil
}
