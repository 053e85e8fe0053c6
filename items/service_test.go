package items_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-afazer-client/authmodel"
	"github.com/jrsteele09/go-afazer-client/internal/utils"
	"github.com/jrsteele09/go-afazer-client/items"
)

const testBaseURL = "http://afazer.test"

// fakeExecutor records the last request and serves canned responses, standing
// in for the authorized executor.
type fakeExecutor struct {
	lastMethod string
	lastURL    string
	lastBody   []byte
	lastHeader http.Header
	respond    func(method, url string) (*http.Response, error)
}

func (f *fakeExecutor) Do(_ context.Context, method, url string, body []byte, header http.Header) (*http.Response, error) {
	f.lastMethod = method
	f.lastURL = url
	f.lastBody = body
	f.lastHeader = header
	return f.respond(method, url)
}

func jsonResponse(status int, body string) (*http.Response, error) {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}, nil
}

// recordingCache is an in-memory ListCache double.
type recordingCache struct {
	puts     map[string][]byte
	listErr  error
	consults int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{puts: map[string][]byte{}}
}

func (c *recordingCache) PutList(_ context.Context, kind string, payload []byte) error {
	c.puts[kind] = payload
	return nil
}

func (c *recordingCache) List(_ context.Context, kind string) ([]byte, time.Time, error) {
	c.consults++
	if c.listErr != nil {
		return nil, time.Time{}, c.listErr
	}
	payload, ok := c.puts[kind]
	if !ok {
		return nil, time.Time{}, errors.New("cache miss")
	}
	return payload, time.Now(), nil
}

func newService(t *testing.T, executor items.Executor, options ...items.ServiceOption) *items.Service {
	t.Helper()
	service, err := items.NewService(testBaseURL, executor, options...)
	require.NoError(t, err)
	return service
}

func TestListBuildsQueryAndRefreshesCache(t *testing.T) {
	executor := &fakeExecutor{respond: func(string, string) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `[{"id":"1","text":"milk","type":"supermarket"},{"id":"2","text":"bread","type":"supermarket"}]`)
	}}
	listCache := newRecordingCache()
	service := newService(t, executor, items.WithCache(listCache))

	result, err := service.List(context.Background(), items.ListOptions{})
	require.NoError(t, err)
	require.Len(t, result, 2)
	require.Equal(t, "milk", result[0].Text)

	require.Equal(t, http.MethodGet, executor.lastMethod)
	require.Equal(t, testBaseURL+"/items/?limit=200", executor.lastURL)
	require.Contains(t, listCache.puts, "all")
}

func TestListTypeFilter(t *testing.T) {
	executor := &fakeExecutor{respond: func(string, string) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `[]`)
	}}
	listCache := newRecordingCache()
	service := newService(t, executor, items.WithCache(listCache))

	_, err := service.List(context.Background(), items.ListOptions{Type: items.TypeCountry, Limit: 50})
	require.NoError(t, err)

	require.Equal(t, testBaseURL+"/items/?limit=50&type=country", executor.lastURL)
	require.Contains(t, listCache.puts, "country")
}

func TestListServesCacheWhenOffline(t *testing.T) {
	listCache := newRecordingCache()
	listCache.puts["all"] = []byte(`[{"id":"1","text":"cached"}]`)

	executor := &fakeExecutor{respond: func(string, string) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	}}
	service := newService(t, executor, items.WithCache(listCache))

	result, err := service.List(context.Background(), items.ListOptions{})
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, "cached", result[0].Text)
}

func TestListSessionDeathBypassesCache(t *testing.T) {
	listCache := newRecordingCache()
	listCache.puts["all"] = []byte(`[{"id":"1","text":"cached"}]`)

	executor := &fakeExecutor{respond: func(string, string) (*http.Response, error) {
		return nil, errors.Wrap(authmodel.RefreshFailedErr, "status 401")
	}}
	service := newService(t, executor, items.WithCache(listCache))

	// A dead session must force re-login; offline data must not mask it.
	_, err := service.List(context.Background(), items.ListOptions{})
	require.ErrorIs(t, err, authmodel.RefreshFailedErr)
	require.Zero(t, listCache.consults)
}

func TestListWithoutCachePropagatesTransportError(t *testing.T) {
	executor := &fakeExecutor{respond: func(string, string) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	}}
	service := newService(t, executor)

	_, err := service.List(context.Background(), items.ListOptions{})
	require.ErrorContains(t, err, "connection refused")
}

func TestCreateSupermarketPinsDefaults(t *testing.T) {
	executor := &fakeExecutor{respond: func(string, string) (*http.Response, error) {
		return jsonResponse(http.StatusCreated, `{"id":"s1","text":"milk","type":"supermarket"}`)
	}}
	service := newService(t, executor)

	created, err := service.CreateSupermarket(context.Background(), items.Item{
		Text: "milk",
		Dynamics: &items.Dynamics{
			Quantity: utils.Ptr(2.0),
			Unit:     utils.Ptr("l"),
			Capital:  utils.Ptr("should be dropped"),
		},
	})
	require.NoError(t, err)
	require.Equal(t, "s1", created.ID)

	require.Equal(t, http.MethodPost, executor.lastMethod)
	require.Equal(t, testBaseURL+"/items/", executor.lastURL)
	require.Equal(t, "application/json", executor.lastHeader.Get("Content-Type"))

	var sent items.Item
	require.NoError(t, json.Unmarshal(executor.lastBody, &sent))
	require.Equal(t, items.TypeSupermarket, sent.Type)
	require.Equal(t, items.CategorySupermarket, sent.Category)
	require.Equal(t, items.ColorBlue, sent.Color)
	require.NotZero(t, sent.CreatedAt)
	require.Equal(t, 2.0, utils.Value(sent.Dynamics.Quantity))
	require.Equal(t, "l", utils.Value(sent.Dynamics.Unit))
	require.Nil(t, sent.Dynamics.Capital) // country field trimmed off
}

func TestCreateCountryPinsDefaults(t *testing.T) {
	executor := &fakeExecutor{respond: func(string, string) (*http.Response, error) {
		return jsonResponse(http.StatusCreated, `{"id":"c1","text":"Portugal","type":"country"}`)
	}}
	service := newService(t, executor)

	_, err := service.CreateCountry(context.Background(), items.Item{
		Text: "Portugal",
		Dynamics: &items.Dynamics{
			Capital:  utils.Ptr("Lisbon"),
			Price:    utils.Ptr(9.99), // supermarket field, trimmed off
			Language: utils.Ptr("Portuguese"),
		},
	})
	require.NoError(t, err)

	var sent items.Item
	require.NoError(t, json.Unmarshal(executor.lastBody, &sent))
	require.Equal(t, items.TypeCountry, sent.Type)
	require.Equal(t, items.CategoryCountry, sent.Category)
	require.Equal(t, items.ColorGreen, sent.Color)
	require.Equal(t, "Lisbon", utils.Value(sent.Dynamics.Capital))
	require.Nil(t, sent.Dynamics.Price)
}

func TestUpdateRequiresID(t *testing.T) {
	executor := &fakeExecutor{respond: func(string, string) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{}`)
	}}
	service := newService(t, executor)

	_, err := service.Update(context.Background(), items.Item{Text: "no id"})
	require.Error(t, err)
}

func TestUpdateAndDeleteTargetItemURL(t *testing.T) {
	executor := &fakeExecutor{respond: func(method, _ string) (*http.Response, error) {
		if method == http.MethodDelete {
			return jsonResponse(http.StatusNoContent, ``)
		}
		return jsonResponse(http.StatusOK, `{"id":"42","text":"updated"}`)
	}}
	service := newService(t, executor)

	updated, err := service.Update(context.Background(), items.Item{ID: "42", Text: "updated"})
	require.NoError(t, err)
	require.Equal(t, "42", updated.ID)
	require.Equal(t, http.MethodPut, executor.lastMethod)
	require.Equal(t, testBaseURL+"/items/42/", executor.lastURL)

	require.NoError(t, service.Delete(context.Background(), "42"))
	require.Equal(t, http.MethodDelete, executor.lastMethod)
	require.Equal(t, testBaseURL+"/items/42/", executor.lastURL)
}

func TestDeleteFailureStatus(t *testing.T) {
	executor := &fakeExecutor{respond: func(string, string) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, `{}`)
	}}
	service := newService(t, executor)

	err := service.Delete(context.Background(), "missing")
	require.ErrorContains(t, err, "unexpected status 404")
}
