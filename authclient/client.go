// Package authclient is the authenticated access layer for the Afazer API:
// session lifecycle (login, logout, current-user probe), a single-flight
// refresh coordinator, and an authorized request executor that recovers from
// one token expiry per logical request.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/go-afazer-client/authmodel"
	"github.com/jrsteele09/go-afazer-client/credentials"
)

const defaultTimeout = 30 * time.Second

// Client talks to the Afazer backend's /auth endpoints and executes business
// requests under bearer authentication. Construct one per session; the
// refresh state is owned by the instance, not by package globals, so multiple
// independent sessions can coexist in one process.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      *credentials.Store
	log        zerolog.Logger
	refreshes  singleflight.Group
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a Client for the API rooted at baseURL (the /auth path is
// appended internally).
func New(baseURL string, creds *credentials.Store, options ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[authclient.New] baseURL is required")
	}
	if creds == nil {
		return nil, errors.New("[authclient.New] credential store is required")
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		creds:      creds,
		log:        zerolog.Nop(),
	}

	for _, opt := range options {
		opt(client)
	}

	return client, nil
}

// Credentials exposes the session's credential store.
func (c *Client) Credentials() *credentials.Store {
	return c.creds
}

// BaseURL returns the API root this client was constructed with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login performs the password grant against POST /auth/token and persists the
// returned token pair. A non-2xx response surfaces the server-provided
// message when there is one.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "[Client.Login] build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "[Client.Login]")
	}
	defer func() { _ = res.Body.Close() }()

	if !successStatus(res.StatusCode) {
		var payload struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(res.Body).Decode(&payload)
		if payload.Message != "" {
			return errors.WithMessage(authmodel.LoginFailedErr, payload.Message)
		}
		return authmodel.LoginFailedErr
	}

	var pair authmodel.TokenResponse
	if err := json.NewDecoder(res.Body).Decode(&pair); err != nil {
		return errors.Wrap(err, "[Client.Login] decode token response")
	}
	if err := c.creds.StoreTokens(pair); err != nil {
		return errors.Wrap(err, "[Client.Login] store tokens")
	}

	c.log.Info().Str("username", username).Msg("logged in")
	return nil
}

// Logout notifies the server best-effort and always clears local
// credentials. A failed server notification is logged, never surfaced:
// "local clear always happens" outranks "server was notified".
func (c *Client) Logout(ctx context.Context) error {
	if refreshToken := c.creds.RefreshToken(); refreshToken != "" {
		body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
		if err == nil {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/logout", bytes.NewReader(body))
			if err == nil {
				req.Header.Set("Content-Type", "application/json")
				if res, err := c.httpClient.Do(req); err != nil {
					c.log.Warn().Err(err).Msg("logout notification failed")
				} else {
					_, _ = io.Copy(io.Discard, res.Body)
					_ = res.Body.Close()
				}
			}
		}
	}

	if err := c.creds.ClearTokens(); err != nil {
		return errors.Wrap(err, "[Client.Logout] clear tokens")
	}
	c.log.Info().Msg("logged out")
	return nil
}

// CurrentUser probes GET /auth/me through the authorized executor. Any
// non-2xx response means the session is not authenticated.
func (c *Client) CurrentUser(ctx context.Context) (*authmodel.User, error) {
	res, err := c.Do(ctx, http.MethodGet, c.baseURL+"/auth/me", nil, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if !successStatus(res.StatusCode) {
		return nil, authmodel.NotAuthenticatedErr
	}

	var user authmodel.User
	if err := json.NewDecoder(res.Body).Decode(&user); err != nil {
		return nil, errors.Wrap(err, "[Client.CurrentUser] decode user")
	}
	return &user, nil
}

func successStatus(status int) bool {
	return status >= 200 && status < 300
}
