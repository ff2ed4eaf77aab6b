package session

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/dmitrijs2005/codeforge/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
)

// tokenPair is the body of /token/, /register/ and /token/refresh/.
type tokenPair struct {
	Access  string          `json:"access"`
	Refresh string          `json:"refresh"`
	User    json.RawMessage `json:"user"`
}

// userPayload accepts both the backend's user object and the cached form.
type userPayload struct {
	ID          any    `json:"id"`
	UserID      any    `json:"user_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
	IsAdmin     bool   `json:"is_admin"`
}

// ParseUser decodes a user object as returned by the API. It returns nil
// for empty, null or unusable input.
func ParseUser(raw []byte) *models.User {
	if len(raw) == 0 {
		return nil
	}
	var p userPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil
	}
	id := claimInt(p.ID)
	if id == 0 {
		id = claimInt(p.UserID)
	}
	if id == 0 && p.Username == "" {
		return nil
	}
	return &models.User{
		ID:       id,
		Username: p.Username,
		Email:    p.Email,
		IsAdmin:  p.IsAdmin || p.IsStaff || p.IsSuperuser,
	}
}

// parseClaims reads the claims of a JWT without verifying its signature.
// The backend verifies; the client only peeks for display purposes.
func parseClaims(token string) (jwt.MapClaims, bool) {
	if token == "" {
		return nil, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

func userFromToken(token string) *models.User {
	claims, ok := parseClaims(token)
	if !ok {
		return nil
	}
	id := claimInt(claims["user_id"])
	name, _ := claims["username"].(string)
	if id == 0 && name == "" {
		return nil
	}
	return &models.User{
		ID:       id,
		Username: name,
		IsAdmin:  claimBool(claims["is_staff"]) || claimBool(claims["is_superuser"]),
	}
}

func tokenExpiry(token string) (time.Time, bool) {
	claims, ok := parseClaims(token)
	if !ok {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func claimInt(v any) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case json.Number:
		n, _ := t.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	default:
		return 0
	}
}

func claimBool(v any) bool {
	b, _ := v.(bool)
	return b
}
