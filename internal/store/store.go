// Package store maintains the dashboard's view of the signed-in user's
// content list.
//
// The remote store is the single authority. [ContentStore] holds one live
// subscription per identity, replaces its cached list wholesale on every
// pushed snapshot, and applies mutations optimistically while the next
// snapshot confirms or corrects them.
package store

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/traylist/internal/models"
	"github.com/desertthunder/traylist/internal/services"
	"github.com/desertthunder/traylist/internal/shared"
)

// resubscribeDelay spaces out reconnect attempts after a dropped
// subscription.
const resubscribeDelay = time.Second

// ContentStore caches the remote list for exactly one identity at a time.
type ContentStore struct {
	svc    services.Store
	logger *log.Logger
	now    func() time.Time

	mu     sync.RWMutex
	userID string
	items  []models.ContentItem
	cancel context.CancelFunc

	// updates carries the latest snapshot to the UI, coalescing so a slow
	// consumer only ever sees the newest list.
	updates chan []models.ContentItem
}

// Opts configures a ContentStore.
type Opts struct {
	Service services.Store
	Logger  *log.Logger
	Now     func() time.Time
}

// NewContentStore creates a ContentStore from opts.
func NewContentStore(opts Opts) *ContentStore {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ContentStore{
		svc:     opts.Service,
		logger:  opts.Logger,
		now:     opts.Now,
		updates: make(chan []models.ContentItem, 1),
	}
}

// Subscribe opens the live query for userID, replacing any existing
// subscription. The initial list is fetched eagerly so callers have data
// before the first push arrives.
func (s *ContentStore) Subscribe(ctx context.Context, userID string) error {
	if s.svc == nil {
		return fmt.Errorf("%w: remote store not initialized", shared.ErrServiceUnavailable)
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	watchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.userID = userID
	s.items = nil
	s.mu.Unlock()

	items, err := s.svc.ListItems(ctx, userID)
	if err != nil {
		return err
	}
	s.replace(userID, items)

	go s.watch(watchCtx, userID)
	return nil
}

// Unsubscribe drops the live subscription and clears the cached list.
// Called on sign-out.
func (s *ContentStore) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.userID = ""
	s.items = nil
}

// watch consumes pushed snapshots until ctx is done, re-subscribing when
// the remote drops the connection.
func (s *ContentStore) watch(ctx context.Context, userID string) {
	for {
		snapshots, err := s.svc.Watch(ctx, userID)
		if err != nil {
			s.logger.Warn("live query unavailable, retrying", "user", userID, "err", err)
		} else {
			for snapshot := range snapshots {
				s.replace(userID, snapshot)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(resubscribeDelay):
		}
	}
}

// replace swaps in a full snapshot. A snapshot for a stale identity
// (subscription replaced mid-flight) is dropped.
func (s *ContentStore) replace(userID string, items []models.ContentItem) {
	s.mu.Lock()
	if s.userID != userID {
		s.mu.Unlock()
		return
	}
	s.items = items
	s.mu.Unlock()

	select {
	case s.updates <- items:
	default:
		select {
		case <-s.updates:
		default:
		}
		select {
		case s.updates <- items:
		default:
		}
	}
}

// Updates returns the channel carrying the latest snapshot. Only the
// newest list is retained for a slow consumer.
func (s *ContentStore) Updates() <-chan []models.ContentItem {
	return s.updates
}

// Items returns a copy of the cached list. Ordering is whatever the
// remote pushed; display layers sort for themselves.
func (s *ContentStore) Items() []models.ContentItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ContentItem, len(s.items))
	copy(out, s.items)
	return out
}

// UserID returns the identity the store is subscribed for, or empty.
func (s *ContentStore) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Add creates a new item scoped to the subscribed identity.
//
// Progress is clamped and status derived from it; tags default to empty
// rather than absent. Empty optional fields stay empty and are omitted on
// the wire. The created item is applied to the cache optimistically.
func (s *ContentStore) Add(ctx context.Context, item models.ContentItem) (*models.ContentItem, error) {
	s.mu.RLock()
	userID := s.userID
	s.mu.RUnlock()

	if userID == "" {
		return nil, shared.ErrNotAuthenticated
	}

	item.UserID = userID
	item.Progress = models.ClampProgress(item.Progress)
	item.Status = models.StatusForProgress(item.Progress)
	if item.Tags == nil {
		item.Tags = []string{}
	}
	if item.AddedDate == "" {
		item.AddedDate = s.now().Format(time.RFC3339)
	}
	if item.Type == "" {
		item.Type = models.DetectContentType(item.URL)
	}

	created, err := s.svc.CreateItem(ctx, item)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.userID == userID {
		s.items = append(s.items, *created)
	}
	s.mu.Unlock()

	return created, nil
}

// Update merges fields into the remote item.
//
// A progress change always writes the derived status alongside it; status
// is never written on its own. The change is applied to the cache
// optimistically and corrected by the next snapshot if the remote
// disagrees.
func (s *ContentStore) Update(ctx context.Context, id string, fields map[string]any) error {
	if v, ok := fields["progress"]; ok {
		progress := models.ClampProgress(toInt(v))
		fields["progress"] = progress
		fields["status"] = string(models.StatusForProgress(progress))
	} else {
		// Status alone would break the derived-pair invariant.
		delete(fields, "status")
	}

	if err := s.svc.UpdateItem(ctx, id, fields); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			applyFields(&s.items[i], fields)
			break
		}
	}
	s.mu.Unlock()

	return nil
}

// Remove deletes the item. Destructive; the dashboard confirms with the
// user before calling.
func (s *ContentStore) Remove(ctx context.Context, id string) error {
	if err := s.svc.DeleteItem(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	return nil
}

// ProgressFromPosition maps a drag coordinate within a bar of the given
// width to a progress percentage in [0, 100].
func ProgressFromPosition(x, width int) int {
	if width <= 0 {
		return 0
	}
	progress := int(math.Round(float64(x) / float64(width) * 100))
	return models.ClampProgress(progress)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func applyFields(item *models.ContentItem, fields map[string]any) {
	for key, v := range fields {
		switch key {
		case "title":
			if s, ok := v.(string); ok {
				item.Title = s
			}
		case "progress":
			item.Progress = toInt(v)
		case "status":
			if s, ok := v.(string); ok {
				item.Status = models.Status(s)
			}
		case "notes":
			if s, ok := v.(string); ok {
				item.Notes = s
			}
		case "tags":
			if tags, ok := v.([]string); ok {
				item.Tags = tags
			}
		case "type":
			if s, ok := v.(string); ok {
				item.Type = models.ContentType(s)
			}
		}
	}
}
