package authmodel

import "strings"

// TokenResponse is the credential pair returned by the auth endpoints
// (password grant and refresh grant share the same shape).
//
// ExpiresIn is informational only: token expiry is discovered reactively
// through 401 responses, never through a local clock.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
}

// Validate checks the minimum shape a response must have before it may be
// persisted. An access token is mandatory; everything else is optional.
func (t TokenResponse) Validate() error {
	if strings.TrimSpace(t.AccessToken) == "" {
		return InvalidCredentialErr
	}
	return nil
}

// HasRefreshToken reports whether the response carries a refresh token.
// Some grants legitimately omit it.
func (t TokenResponse) HasRefreshToken() bool {
	return t.RefreshToken != ""
}

// IsBearer reports whether the token type is the expected "bearer"
// (case-insensitive, per RFC 6749 §5.1).
func (t TokenResponse) IsBearer() bool {
	return strings.EqualFold(t.TokenType, "bearer")
}

// User is the identity returned by GET /auth/me.
type User struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}
