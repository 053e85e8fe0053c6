package authclient_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-afazer-client/authclient"
	"github.com/jrsteele09/go-afazer-client/authmodel"
	"github.com/jrsteele09/go-afazer-client/credentials"
	"github.com/jrsteele09/go-afazer-client/credentials/memstore"
)

const (
	staleAccessToken = "A1"
	freshAccessToken = "A2"
	testRefresh      = "R1"
)

// fixture wires a Client against an httptest backend with fresh in-memory
// credentials.
type fixture struct {
	store  *credentials.Store
	client *authclient.Client
	server *httptest.Server
}

func newFixture(t *testing.T, handler http.Handler) *fixture {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store, err := credentials.New(memstore.New())
	require.NoError(t, err)

	client, err := authclient.New(server.URL, store)
	require.NoError(t, err)

	return &fixture{store: store, client: client, server: server}
}

func (f *fixture) seedTokens(t *testing.T, accessToken, refreshToken string) {
	t.Helper()
	require.NoError(t, f.store.StoreTokens(authmodel.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}))
}

func writeTokens(w http.ResponseWriter, accessToken, refreshToken string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(authmodel.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	})
}

func decodeRefreshRequest(r *http.Request) string {
	var payload struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)
	return payload.RefreshToken
}

// countingTransport fails every request while counting attempts, to prove no
// network call was made.
type countingTransport struct {
	calls int32
}

func (c *countingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	atomic.AddInt32(&c.calls, 1)
	return nil, errors.New("unexpected network call")
}

func (c *countingTransport) count() int32 {
	return atomic.LoadInt32(&c.calls)
}
