package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/codeforge/internal/common"
	"github.com/dmitrijs2005/codeforge/internal/netx"
	"github.com/google/uuid"
)

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 8 << 20

// Do sends an authenticated request. On a 401 it refreshes the access token
// once (shared with every concurrent caller) and replays the same request
// bytes. A second 401, or a 401 with nothing to refresh, ends the session
// and returns an *AuthError. Other non-2xx statuses and transport failures
// return a *NetworkError.
func (m *Manager) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
	}
	endpoint := method + " " + path

	cred, _ := m.snapshot()
	resp, err := m.send(ctx, method, path, payload, cred.AccessToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return checkStatus(endpoint, resp)
	}

	if cred.Empty() {
		return nil, &AuthError{Message: netx.ServerMessage(resp.StatusCode, resp.Body)}
	}
	token, err := m.refresh(ctx, cred.AccessToken)
	if err != nil {
		return nil, err
	}

	resp, err = m.send(ctx, method, path, payload, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		m.expireIf(ctx, sameAccess(token))
		return nil, &AuthError{Message: "request rejected after token refresh", Err: ErrSessionExpired}
	}
	return checkStatus(endpoint, resp)
}

// send performs one HTTP exchange. token may be empty for anonymous calls.
func (m *Manager) send(ctx context.Context, method, path string, payload []byte, token string) (*Response, error) {
	endpoint := method + " " + path

	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{Endpoint: endpoint, Message: "rate limiter", Err: err}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, netx.JoinURL(m.baseURL, path), body)
	if err != nil {
		return nil, &NetworkError{Endpoint: endpoint, Message: "build request", Err: err}
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	start := time.Now()
	resp, err := m.httpClient.Do(req)
	if err != nil {
		m.log.Debug(ctx, "api call failed", "endpoint", endpoint, "request_id", requestID, "error", err)
		return nil, &NetworkError{Endpoint: endpoint, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &NetworkError{StatusCode: resp.StatusCode, Endpoint: endpoint, Message: "read response body", Err: err}
	}

	m.log.Debug(ctx, "api call",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start),
	)

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func checkStatus(endpoint string, resp *Response) (*Response, error) {
	if netx.IsSuccess(resp.StatusCode) {
		return resp, nil
	}
	return nil, &NetworkError{
		StatusCode: resp.StatusCode,
		Endpoint:   endpoint,
		Message:    netx.ServerMessage(resp.StatusCode, resp.Body),
	}
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	return json.Marshal(body)
}
