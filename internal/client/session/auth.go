package session

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/codeforge/internal/client/models"
	"github.com/dmitrijs2005/codeforge/internal/netx"
)

const (
	loginPath    = "/token/"
	registerPath = "/register/"
)

// Login exchanges username and password for a token pair and starts a new
// session. Rejected credentials give an *AuthError with the server message.
func (m *Manager) Login(ctx context.Context, username, password string) (models.Credential, error) {
	payload, err := encodeBody(map[string]string{"username": username, "password": password})
	if err != nil {
		return models.Credential{}, err
	}

	resp, err := m.send(ctx, http.MethodPost, loginPath, payload, "")
	if err != nil {
		return models.Credential{}, err
	}
	if err := authStatus(http.MethodPost+" "+loginPath, resp); err != nil {
		return models.Credential{}, err
	}

	var tp tokenPair
	if err := resp.Decode(&tp); err != nil || tp.Access == "" {
		return models.Credential{}, &NetworkError{
			StatusCode: resp.StatusCode,
			Endpoint:   http.MethodPost + " " + loginPath,
			Message:    "malformed token response",
			Err:        err,
		}
	}

	cred := models.Credential{AccessToken: tp.Access, RefreshToken: tp.Refresh}
	m.establish(ctx, cred, ParseUser(tp.User))
	m.log.Info(ctx, "logged in", "user", username)
	return cred, nil
}

// Register creates an account. When the backend answers with tokens they
// start the session directly; otherwise Register logs in with the same
// credentials.
func (m *Manager) Register(ctx context.Context, username, password, email string) (models.Credential, error) {
	body := map[string]string{"username": username, "password": password}
	if email != "" {
		body["email"] = email
	}
	payload, err := encodeBody(body)
	if err != nil {
		return models.Credential{}, err
	}

	resp, err := m.send(ctx, http.MethodPost, registerPath, payload, "")
	if err != nil {
		return models.Credential{}, err
	}
	if err := authStatus(http.MethodPost+" "+registerPath, resp); err != nil {
		return models.Credential{}, err
	}

	var tp tokenPair
	if err := resp.Decode(&tp); err != nil || tp.Access == "" {
		m.log.Debug(ctx, "register returned no tokens, logging in", "user", username)
		return m.Login(ctx, username, password)
	}

	cred := models.Credential{AccessToken: tp.Access, RefreshToken: tp.Refresh}
	m.establish(ctx, cred, ParseUser(tp.User))
	m.log.Info(ctx, "registered", "user", username)
	return cred, nil
}

// authStatus maps the status of an anonymous auth call to an error.
func authStatus(endpoint string, resp *Response) error {
	switch {
	case netx.IsSuccess(resp.StatusCode):
		return nil
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		return &AuthError{Message: netx.ServerMessage(resp.StatusCode, resp.Body)}
	default:
		return &NetworkError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Message:    netx.ServerMessage(resp.StatusCode, resp.Body),
		}
	}
}
