package items

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-afazer-client/authmodel"
)

const defaultLimit = 200

// Executor performs one authorized HTTP request. *authclient.Client satisfies
// this.
type Executor interface {
	Do(ctx context.Context, method, url string, body []byte, header http.Header) (*http.Response, error)
}

// ListCache is the optional offline read-through cache for list payloads.
// *cache.Store satisfies this.
type ListCache interface {
	PutList(ctx context.Context, kind string, payload []byte) error
	List(ctx context.Context, kind string) ([]byte, time.Time, error)
}

// Service wraps the /items CRUD endpoints. A configured cache turns List into
// a read-through: successful responses refresh it, transport failures serve
// from it.
type Service struct {
	executor Executor
	baseURL  string
	cache    ListCache
	log      zerolog.Logger
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithCache enables the offline read-through cache.
func WithCache(cache ListCache) ServiceOption {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// NewService creates an items service rooted at baseURL (the API root; the
// /items path is appended internally).
func NewService(baseURL string, executor Executor, options ...ServiceOption) (*Service, error) {
	if baseURL == "" {
		return nil, errors.New("[items.NewService] baseURL is required")
	}
	if executor == nil {
		return nil, errors.New("[items.NewService] executor is required")
	}

	service := &Service{
		executor: executor,
		baseURL:  baseURL + "/items",
		log:      zerolog.Nop(),
	}

	for _, opt := range options {
		opt(service)
	}

	return service, nil
}

// ListOptions filters a List call. A zero Type lists everything; a zero
// Limit applies the default.
type ListOptions struct {
	Type  string
	Limit int
}

func (o ListOptions) cacheKind() string {
	if o.Type == "" {
		return "all"
	}
	return o.Type
}

// List fetches items, refreshing the cache on success. When the request
// fails in transit and a cached payload exists, the cached items are served
// instead; session-level failures (dead refresh token) always surface so the
// caller can force a re-login.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Item, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", limit))
	if opts.Type != "" {
		query.Set("type", opts.Type)
	}

	res, err := s.executor.Do(ctx, http.MethodGet, s.baseURL+"/?"+query.Encode(), nil, nil)
	if err != nil {
		if sessionError(err) {
			return nil, err
		}
		return s.listFromCache(ctx, opts, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, errors.Errorf("[Service.List] unexpected status %d", res.StatusCode)
	}

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.List] read body")
	}

	var result []Item
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, errors.Wrap(err, "[Service.List] decode items")
	}

	if s.cache != nil {
		if err := s.cache.PutList(ctx, opts.cacheKind(), payload); err != nil {
			s.log.Warn().Err(err).Msg("failed to refresh items cache")
		}
	}
	return result, nil
}

func (s *Service) listFromCache(ctx context.Context, opts ListOptions, cause error) ([]Item, error) {
	if s.cache == nil {
		return nil, cause
	}

	payload, fetchedAt, err := s.cache.List(ctx, opts.cacheKind())
	if err != nil {
		return nil, cause
	}

	var result []Item
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, cause
	}

	s.log.Warn().Err(cause).Time("fetched_at", fetchedAt).Msg("serving items from offline cache")
	return result, nil
}

// Create posts a new item and returns the server's copy (with its assigned
// id).
func (s *Service) Create(ctx context.Context, item Item) (*Item, error) {
	return s.write(ctx, http.MethodPost, s.baseURL+"/", item, "[Service.Create]")
}

// Update replaces an existing item wholesale.
func (s *Service) Update(ctx context.Context, item Item) (*Item, error) {
	if item.ID == "" {
		return nil, errors.New("[Service.Update] item id is required")
	}
	return s.write(ctx, http.MethodPut, s.baseURL+"/"+item.ID+"/", item, "[Service.Update]")
}

// Delete removes an item by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("[Service.Delete] item id is required")
	}

	res, err := s.executor.Do(ctx, http.MethodDelete, s.baseURL+"/"+id+"/", nil, nil)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return errors.Errorf("[Service.Delete] unexpected status %d", res.StatusCode)
	}
	return nil
}

func (s *Service) write(ctx context.Context, method, requestURL string, item Item, wrap string) (*Item, error) {
	body, err := json.Marshal(item)
	if err != nil {
		return nil, errors.Wrap(err, wrap+" encode item")
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")

	res, err := s.executor.Do(ctx, method, requestURL, body, header)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, errors.Errorf("%s unexpected status %d", wrap, res.StatusCode)
	}

	var result Item
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, wrap+" decode item")
	}
	return &result, nil
}

// sessionError reports whether err means the session itself is dead, in which
// case offline data must not mask the need to re-login.
func sessionError(err error) bool {
	return errors.Is(err, authmodel.RefreshFailedErr) ||
		errors.Is(err, authmodel.NoRefreshTokenErr) ||
		errors.Is(err, authmodel.NotAuthenticatedErr)
}
