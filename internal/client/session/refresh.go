package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/codeforge/internal/netx"
)

const (
	refreshKey  = "refresh"
	refreshPath = "/token/refresh/"
)

// refresh returns an access token newer than stale. Callers arriving while a
// refresh is running join it; a caller whose token was already replaced gets
// the current one without a network call.
func (m *Manager) refresh(ctx context.Context, stale string) (string, error) {
	if token, ok, err := m.checkStale(ctx, stale); ok || err != nil {
		return token, err
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := m.refreshes.DoChan(refreshKey, func() (any, error) {
		return m.runRefresh(flightCtx, stale)
	})

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for token refresh: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// checkStale decides whether a refresh is needed at all. ok means token can
// be used right away.
func (m *Manager) checkStale(ctx context.Context, stale string) (token string, ok bool, err error) {
	cred, epoch := m.snapshot()
	switch {
	case cred.Empty():
		return "", false, &AuthError{Message: "not logged in", Err: ErrSessionExpired}
	case cred.AccessToken != stale:
		m.log.Debug(ctx, "access token already rotated")
		return cred.AccessToken, true, nil
	case cred.RefreshToken == "":
		m.expireIf(ctx, sameEpoch(epoch))
		return "", false, &AuthError{Message: "no refresh token", Err: ErrSessionExpired}
	}
	return "", false, nil
}

// runRefresh is the body of the shared flight. The new tokens are in memory
// and in storage before it returns, so every waiter retries with them.
func (m *Manager) runRefresh(ctx context.Context, stale string) (string, error) {
	if token, ok, err := m.checkStale(ctx, stale); ok || err != nil {
		return token, err
	}
	cred, epoch := m.snapshot()

	m.log.Debug(ctx, "refreshing access token")

	tp, err := m.requestRefresh(ctx, cred.RefreshToken)
	if err != nil {
		m.log.Warn(ctx, "token refresh failed", "error", err)
		m.expireIf(ctx, sameEpoch(epoch))
		return "", &AuthError{Message: "token refresh failed", Err: ErrSessionExpired}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.epoch != epoch {
		m.log.Info(ctx, "discarding token refresh for an ended session")
		return "", &AuthError{Message: "session ended during token refresh", Err: ErrSessionExpired}
	}

	m.cred.AccessToken = tp.Access
	values := map[string][]byte{KeyAccess: []byte(tp.Access)}
	if tp.Refresh != "" {
		m.cred.RefreshToken = tp.Refresh
		values[KeyRefresh] = []byte(tp.Refresh)
	}
	if err := m.store.SetMany(ctx, values); err != nil {
		m.log.Warn(ctx, "failed to persist refreshed tokens", "error", err)
	}

	return tp.Access, nil
}

func (m *Manager) requestRefresh(ctx context.Context, refreshToken string) (*tokenPair, error) {
	payload, err := json.Marshal(map[string]string{"refresh": refreshToken})
	if err != nil {
		return nil, err
	}

	resp, err := m.send(ctx, http.MethodPost, refreshPath, payload, "")
	if err != nil {
		return nil, err
	}
	if !netx.IsSuccess(resp.StatusCode) {
		return nil, &NetworkError{
			StatusCode: resp.StatusCode,
			Endpoint:   http.MethodPost + " " + refreshPath,
			Message:    netx.ServerMessage(resp.StatusCode, resp.Body),
		}
	}

	var tp tokenPair
	if err := resp.Decode(&tp); err != nil {
		return nil, err
	}
	if tp.Access == "" {
		return nil, errors.New("refresh response carries no access token")
	}
	return &tp, nil
}
