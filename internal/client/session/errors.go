package session

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrUnavailable    = errors.New("server unavailable")
	ErrValidation     = errors.New("validation failed")
	ErrSessionExpired = errors.New("session expired")
)

// AuthError reports bad credentials, a failed refresh or a forced logout.
// It matches ErrUnauthorized.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return ErrUnauthorized.Error()
	}
}

func (e *AuthError) Is(target error) bool { return target == ErrUnauthorized }

func (e *AuthError) Unwrap() error { return e.Err }

// NetworkError reports a transport failure (StatusCode 0) or a non-auth HTTP
// error. It matches ErrUnavailable.
type NetworkError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Endpoint, msg)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.StatusCode, msg)
}

func (e *NetworkError) Is(target error) bool { return target == ErrUnavailable }

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError reports a missing or malformed caller-side field. It
// matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// IsAuth reports whether err means the session is gone and the user has to
// log in again.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// StatusCode returns the HTTP status carried by a NetworkError in err's
// chain, or 0.
func StatusCode(err error) int {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.StatusCode
	}
	return 0
}
