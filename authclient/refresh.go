package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-afazer-client/authmodel"
)

// One key: a Client only ever has one refresh in flight.
const refreshFlightKey = "refresh"

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges the stored refresh token for a new token pair and returns
// the new access token.
//
// Concurrency contract: under N concurrent callers, exactly one refresh-grant
// request reaches the network; the others join the in-flight call and receive
// the identical outcome. The first caller's context drives the shared call.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	value, err, shared := c.refreshes.Do(refreshFlightKey, func() (interface{}, error) {
		return c.doRefresh(ctx)
	})
	if shared {
		c.log.Debug().Msg("joined in-flight token refresh")
	}
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

func (c *Client) doRefresh(ctx context.Context) (string, error) {
	refreshToken := c.creds.RefreshToken()
	if refreshToken == "" {
		return "", authmodel.NoRefreshTokenErr
	}

	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", errors.Wrap(err, "[Client.Refresh] encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "[Client.Refresh] build request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failure: propagate without clearing. A flaky network must
		// not destroy a still-valid session.
		return "", errors.Wrap(err, "[Client.Refresh]")
	}
	defer func() { _ = res.Body.Close() }()

	if !successStatus(res.StatusCode) {
		// A rejected refresh token is assumed permanently unusable: the whole
		// session is invalidated so the caller re-logs in.
		if clearErr := c.creds.ClearTokens(); clearErr != nil {
			c.log.Warn().Err(clearErr).Msg("failed clearing credentials after rejected refresh")
		}
		return "", errors.Wrapf(authmodel.RefreshFailedErr, "status %d", res.StatusCode)
	}

	var pair authmodel.TokenResponse
	if err := json.NewDecoder(res.Body).Decode(&pair); err != nil {
		return "", errors.Wrap(err, "[Client.Refresh] decode token response")
	}

	// A refresh response may omit the refresh token; the previous one stays
	// valid, so carry it forward before the store's delete-on-absent contract
	// would drop it.
	if !pair.HasRefreshToken() {
		pair.RefreshToken = refreshToken
	}

	if err := c.creds.StoreTokens(pair); err != nil {
		return "", errors.Wrap(err, "[Client.Refresh] store tokens")
	}

	c.log.Debug().Msg("access token refreshed")
	return pair.AccessToken, nil
}
