package authclient

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Do performs one logical HTTP request under bearer authentication,
// transparently recovering from exactly one token expiry.
//
// When no access token is stored the request proceeds unauthenticated: some
// flows probe "am I logged in" and expect the server's 401 rather than a
// client-side short circuit. A non-401 response is returned as-is. On a 401
// the refresh coordinator runs and the request is replayed exactly once with
// the new token; that second response is returned regardless of its status.
// A failed refresh propagates instead of the stale 401, so the caller learns
// the session is dead, not merely that one call failed.
//
// Transport failures on either attempt propagate unchanged: single-shot
// recovery only, no backoff.
func (c *Client) Do(ctx context.Context, method, requestURL string, body []byte, header http.Header) (*http.Response, error) {
	requestID := uuid.New().String()

	res, err := c.send(ctx, method, requestURL, body, header, c.creds.AccessToken(), requestID)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusUnauthorized {
		return res, nil
	}

	// The 401 body is never surfaced; drain it so the connection is reusable.
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()

	accessToken, err := c.Refresh(ctx)
	if err != nil {
		return nil, err
	}

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("url", requestURL).
		Msg("replaying request with refreshed token")
	return c.send(ctx, method, requestURL, body, header, accessToken, requestID)
}

func (c *Client) send(ctx context.Context, method, requestURL string, body []byte, header http.Header, accessToken, requestID string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Do] build request")
	}

	// Caller headers first; the executor owns only Authorization and
	// X-Request-Id.
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	req.Header.Set("X-Request-Id", requestID)

	return c.httpClient.Do(req)
}
