// Package netx holds small HTTP helpers shared by the API client: URL
// joining and extraction of the human-readable message from an error body.
package netx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// maxMessageLen caps raw bodies echoed back as error messages.
const maxMessageLen = 200

// JoinURL joins base and path with exactly one slash between them.
func JoinURL(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// IsSuccess reports whether code is a 2xx status.
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}

// ServerMessage extracts the message a REST backend put in an error body.
// It looks at "detail", "error" and the first "non_field_errors" entry, in
// that order, then falls back to the trimmed raw body, and finally to the
// status text.
func ServerMessage(status int, body []byte) string {
	var payload struct {
		Detail         any   `json:"detail"`
		Error          any   `json:"error"`
		NonFieldErrors []any `json:"non_field_errors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if s := text(payload.Detail); s != "" {
			return s
		}
		if s := text(payload.Error); s != "" {
			return s
		}
		if len(payload.NonFieldErrors) > 0 {
			if s := text(payload.NonFieldErrors[0]); s != "" {
				return s
			}
		}
	}

	raw := strings.TrimSpace(string(body))
	if raw != "" && !strings.HasPrefix(raw, "{") && !strings.HasPrefix(raw, "<") {
		if len(raw) > maxMessageLen {
			raw = raw[:maxMessageLen] + "..."
		}
		return raw
	}
	if status == 0 {
		return ""
	}
	return strings.ToLower(http.StatusText(status))
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []any:
		if len(t) > 0 {
			return text(t[0])
		}
		return ""
	default:
		return fmt.Sprint(t)
	}
}
