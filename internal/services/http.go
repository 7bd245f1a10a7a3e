// HTTP implementation of [Store] against the hosted content API.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/desertthunder/traylist/internal/models"
	"github.com/desertthunder/traylist/internal/shared"
	"golang.org/x/time/rate"
)

// TokenFunc supplies the bearer token for each request, typically reading
// the mirrored identity from shared storage.
type TokenFunc func() (string, error)

// HTTPStore implements [Store] over JSON HTTP plus a websocket watch
// endpoint. Writes are rate limited to respect the hosted API's quota.
type HTTPStore struct {
	baseURL    string
	watchURL   string
	httpClient *http.Client
	token      TokenFunc
	limiter    *rate.Limiter
}

// HTTPStoreOpts configures an HTTPStore.
type HTTPStoreOpts struct {
	BaseURL  string
	WatchURL string
	Client   *http.Client
	Token    TokenFunc
	// WriteRateLimit caps writes per second; zero disables limiting.
	WriteRateLimit float64
}

// NewHTTPStore creates a new remote store client.
func NewHTTPStore(opts HTTPStoreOpts) *HTTPStore {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:8080"
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}

	var limiter *rate.Limiter
	if opts.WriteRateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.WriteRateLimit), 1)
	}

	return &HTTPStore{
		baseURL:    opts.BaseURL,
		watchURL:   opts.WatchURL,
		httpClient: opts.Client,
		token:      opts.Token,
		limiter:    limiter,
	}
}

func (s *HTTPStore) Name() string {
	return "traylist-api"
}

// CreateItem writes a new content item scoped to its UserID.
func (s *HTTPStore) CreateItem(ctx context.Context, item models.ContentItem) (*models.ContentItem, error) {
	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	var created models.ContentItem
	if err := s.doWrite(ctx, http.MethodPost, "/items", item, &created); err != nil {
		return nil, err
	}

	return &created, nil
}

// UpdateItem merges fields into the remote item.
func (s *HTTPStore) UpdateItem(ctx context.Context, id string, fields map[string]any) error {
	if id == "" {
		return fmt.Errorf("%w: missing item id", shared.ErrInvalidInput)
	}
	return s.doWrite(ctx, http.MethodPatch, "/items/"+url.PathEscape(id), fields, nil)
}

// DeleteItem removes the remote item.
func (s *HTTPStore) DeleteItem(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: missing item id", shared.ErrInvalidInput)
	}
	return s.doWrite(ctx, http.MethodDelete, "/items/"+url.PathEscape(id), nil, nil)
}

// ListItems retrieves all items for userID.
func (s *HTTPStore) ListItems(ctx context.Context, userID string) ([]models.ContentItem, error) {
	endpoint := "/items?userId=" + url.QueryEscape(userID)

	req, err := s.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var items []models.ContentItem
	if err := s.do(req, &items); err != nil {
		return nil, err
	}

	return items, nil
}

// doWrite performs a rate-limited mutating request.
func (s *HTTPStore) doWrite(ctx context.Context, method, endpoint string, body any, result any) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: rate limiter: %v", shared.ErrAPIRequest, err)
		}
	}

	req, err := s.newRequest(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	return s.do(req, result)
}

// newRequest builds an authenticated JSON request.
func (s *HTTPStore) newRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if s.token != nil {
		tok, err := s.token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	return req, nil
}

// do executes the request and decodes a JSON response into result when
// result is non-nil.
func (s *HTTPStore) do(req *http.Request, result any) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: status 404", shared.ErrItemNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(body))
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
