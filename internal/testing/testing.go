// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/traylist/internal/models"
	"github.com/desertthunder/traylist/internal/shared"
)

// MockStore is a test double for services.Store backed by an in-memory map.
//
// FailAfter injects a failure partway through a batch: the n-th create call
// (1-indexed) and every later one fail until the counter is reset.
type MockStore struct {
	mu        sync.Mutex
	items     map[string]models.ContentItem
	creates   int
	FailAfter int
	WatchCh   chan []models.ContentItem
}

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		items:   map[string]models.ContentItem{},
		WatchCh: make(chan []models.ContentItem, 8),
	}
}

func (m *MockStore) Name() string { return "mock" }

func (m *MockStore) CreateItem(ctx context.Context, item models.ContentItem) (*models.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.creates++
	if m.FailAfter > 0 && m.creates >= m.FailAfter {
		return nil, errors.New("simulated remote failure")
	}

	item.ID = fmt.Sprintf("item-%d", m.creates)
	m.items[item.ID] = item
	return &item, nil
}

func (m *MockStore) UpdateItem(ctx context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return shared.ErrItemNotFound
	}

	if v, ok := fields["progress"]; ok {
		switch p := v.(type) {
		case int:
			item.Progress = p
		case float64:
			item.Progress = int(p)
		}
	}
	if v, ok := fields["status"].(string); ok {
		item.Status = models.Status(v)
	}
	if v, ok := fields["status"].(models.Status); ok {
		item.Status = v
	}
	if v, ok := fields["title"].(string); ok {
		item.Title = v
	}
	if v, ok := fields["notes"].(string); ok {
		item.Notes = v
	}

	m.items[id] = item
	return nil
}

func (m *MockStore) DeleteItem(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return shared.ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *MockStore) ListItems(ctx context.Context, userID string) ([]models.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var items []models.ContentItem
	for _, item := range m.items {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (m *MockStore) Watch(ctx context.Context, userID string) (<-chan []models.ContentItem, error) {
	return m.WatchCh, nil
}

// PushSnapshot emits a snapshot to Watch subscribers.
func (m *MockStore) PushSnapshot(items []models.ContentItem) {
	m.WatchCh <- items
}

// Items returns a copy of the stored items.
func (m *MockStore) Items() []models.ContentItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.ContentItem, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	return out
}

// Get returns a stored item by id.
func (m *MockStore) Get(id string) (models.ContentItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	return item, ok
}

// SetFailAfter changes the failure threshold under the store's lock, safe
// to call while a drain goroutine is running.
func (m *MockStore) SetFailAfter(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailAfter = n
}

// Creates returns the number of create calls observed.
func (m *MockStore) Creates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creates
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}
