package models

// Credential is the access/refresh token pair issued by the backend.
type Credential struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh,omitempty"`
}

// Empty reports whether no access token is held.
func (c Credential) Empty() bool {
	return c.AccessToken == ""
}

// User is the cached identity of the logged-in account.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	Email    string `json:"email,omitempty"`
}

// Name returns the username, or "" for a nil user.
func (u *User) Name() string {
	if u == nil {
		return ""
	}
	return u.Username
}
