package authclient

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/jrsteele09/go-afazer-client/authmodel"
)

// SessionClaims decodes the stored access token as a JWT without verifying
// its signature, for display purposes only (e.g. showing the session subject
// or expiry in a UI). Tokens stay opaque to every control-flow decision:
// expiry is discovered through 401 responses, never through these claims.
func (c *Client) SessionClaims() (jwt.MapClaims, error) {
	raw := c.creds.AccessToken()
	if raw == "" {
		return nil, authmodel.NotAuthenticatedErr
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, errors.Wrap(err, "[Client.SessionClaims] not a decodable JWT")
	}
	return claims, nil
}
