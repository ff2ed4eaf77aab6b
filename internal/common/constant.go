// Package common contains constants and small helpers shared across the
// CodeForge client packages.
package common

// HTTP header names used on every outbound API request.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	BearerPrefix            = "Bearer "
)

// Guest is the identity used in local keys when nobody is logged in.
const Guest = "guest"
