package services

import (
	"context"

	"github.com/desertthunder/traylist/internal/models"
)

// Store defines the remote content store contract used by the drainer and
// the dashboard's content store.
type Store interface {
	// CreateItem writes a new content item and returns it with its
	// generated id.
	CreateItem(ctx context.Context, item models.ContentItem) (*models.ContentItem, error)

	// UpdateItem merges the named fields into the existing remote item.
	// Callers supplying progress must supply the consistently derived
	// status alongside it.
	UpdateItem(ctx context.Context, id string, fields map[string]any) error

	// DeleteItem removes the remote item. Destructive; no undo.
	DeleteItem(ctx context.Context, id string) error

	// ListItems retrieves all items scoped to userID.
	ListItems(ctx context.Context, userID string) ([]models.ContentItem, error)

	// Watch opens the live query scoped to userID. The returned channel
	// receives full result-set snapshots on every remote change and is
	// closed when ctx is done or the subscription drops.
	Watch(ctx context.Context, userID string) (<-chan []models.ContentItem, error)

	// Name returns the store's display name for logs.
	Name() string
}
