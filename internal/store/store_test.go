package store

import (
	"context"
	"testing"
	"time"

	"github.com/desertthunder/traylist/internal/models"
	internaltesting "github.com/desertthunder/traylist/internal/testing"
)

func newSubscribedStore(t *testing.T) (*ContentStore, *internaltesting.MockStore) {
	t.Helper()

	mock := internaltesting.NewMockStore()
	cs := NewContentStore(Opts{Service: mock})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if err := cs.Subscribe(ctx, "u1"); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	return cs, mock
}

func waitForItems(t *testing.T, cs *ContentStore, n int) []models.ContentItem {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		items := cs.Items()
		if len(items) == n {
			return items
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d cached items, got %d", n, len(cs.Items()))
	return nil
}

func TestSnapshotReplacesListWholesale(t *testing.T) {
	cs, mock := newSubscribedStore(t)

	mock.PushSnapshot([]models.ContentItem{
		{ID: "a", Title: "First", UserID: "u1"},
		{ID: "b", Title: "Second", UserID: "u1"},
	})
	waitForItems(t, cs, 2)

	// The next snapshot is not a diff: items absent from it disappear.
	mock.PushSnapshot([]models.ContentItem{
		{ID: "b", Title: "Second (renamed)", UserID: "u1"},
	})
	items := waitForItems(t, cs, 1)
	if items[0].ID != "b" || items[0].Title != "Second (renamed)" {
		t.Errorf("unexpected surviving item: %+v", items[0])
	}
}

func TestAddStampsAndAppliesOptimistically(t *testing.T) {
	cs, mock := newSubscribedStore(t)

	created, err := cs.Add(context.Background(), models.ContentItem{
		Title: "Deep Work",
		Type:  models.TypeBook,
	})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if created.UserID != "u1" {
		t.Errorf("expected item scoped to u1, got %s", created.UserID)
	}
	if created.Status != models.StatusTodo || created.Progress != 0 {
		t.Errorf("expected todo/0 defaults, got %s/%d", created.Status, created.Progress)
	}
	if created.Tags == nil {
		t.Error("expected tags to default to empty, not absent")
	}
	if created.AddedDate == "" {
		t.Error("expected AddedDate to be stamped")
	}

	// Optimistic: cached before any snapshot arrives.
	items := cs.Items()
	if len(items) != 1 || items[0].ID != created.ID {
		t.Errorf("expected optimistic cache entry, got %+v", items)
	}

	if _, ok := mock.Get(created.ID); !ok {
		t.Error("expected item written to the remote store")
	}
}

func TestAddDetectsTypeFromURL(t *testing.T) {
	cs, _ := newSubscribedStore(t)

	created, err := cs.Add(context.Background(), models.ContentItem{
		Title: "A Talk",
		URL:   "https://youtube.com/watch?v=abc",
	})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if created.Type != models.TypeVideo {
		t.Errorf("expected video type from URL, got %s", created.Type)
	}
}

func TestAddRequiresSubscription(t *testing.T) {
	cs := NewContentStore(Opts{Service: internaltesting.NewMockStore()})
	if _, err := cs.Add(context.Background(), models.ContentItem{Title: "x"}); err == nil {
		t.Fatal("expected add without identity to fail")
	}
}

func TestUpdateProgressWritesDerivedStatusPair(t *testing.T) {
	cs, mock := newSubscribedStore(t)

	created, err := cs.Add(context.Background(), models.ContentItem{Title: "Deep Work", Type: models.TypeBook})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	tests := []struct {
		name       string
		progress   int
		wantStatus models.Status
		wantValue  int
	}{
		{"mid progress", 40, models.StatusInProgress, 40},
		{"complete", 100, models.StatusCompleted, 100},
		{"over-complete clamps", 130, models.StatusCompleted, 100},
		{"back to zero", 0, models.StatusTodo, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cs.Update(context.Background(), created.ID, map[string]any{"progress": tt.progress})
			if err != nil {
				t.Fatalf("update failed: %v", err)
			}

			remote, _ := mock.Get(created.ID)
			if remote.Progress != tt.wantValue || remote.Status != tt.wantStatus {
				t.Errorf("remote pair %s/%d, want %s/%d", remote.Status, remote.Progress, tt.wantStatus, tt.wantValue)
			}

			cached := cs.Items()[0]
			if cached.Progress != tt.wantValue || cached.Status != tt.wantStatus {
				t.Errorf("cached pair %s/%d, want %s/%d", cached.Status, cached.Progress, tt.wantStatus, tt.wantValue)
			}
		})
	}
}

func TestUpdateDropsBareStatus(t *testing.T) {
	cs, mock := newSubscribedStore(t)

	created, err := cs.Add(context.Background(), models.ContentItem{Title: "Deep Work", Type: models.TypeBook})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	err = cs.Update(context.Background(), created.ID, map[string]any{"status": "completed", "notes": "great"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	remote, _ := mock.Get(created.ID)
	if remote.Status != models.StatusTodo {
		t.Errorf("bare status change must be dropped, got %s", remote.Status)
	}
	if remote.Notes != "great" {
		t.Errorf("other fields should still apply, got notes %q", remote.Notes)
	}
}

func TestRemove(t *testing.T) {
	cs, mock := newSubscribedStore(t)

	created, err := cs.Add(context.Background(), models.ContentItem{Title: "Deep Work", Type: models.TypeBook})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := cs.Remove(context.Background(), created.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	if _, ok := mock.Get(created.ID); ok {
		t.Error("expected remote item deleted")
	}
	if len(cs.Items()) != 0 {
		t.Error("expected optimistic local removal")
	}
}

func TestUnsubscribeClearsIdentity(t *testing.T) {
	cs, mock := newSubscribedStore(t)

	mock.PushSnapshot([]models.ContentItem{{ID: "a", Title: "First", UserID: "u1"}})
	waitForItems(t, cs, 1)

	cs.Unsubscribe()
	if cs.UserID() != "" {
		t.Error("expected identity cleared")
	}
	if len(cs.Items()) != 0 {
		t.Error("expected cache cleared on unsubscribe")
	}
}

func TestProgressFromPosition(t *testing.T) {
	tests := []struct {
		name  string
		x     int
		width int
		want  int
	}{
		{"left edge", 0, 20, 0},
		{"right edge", 20, 20, 100},
		{"midpoint", 10, 20, 50},
		{"rounds", 1, 3, 33},
		{"past right edge clamps", 35, 20, 100},
		{"before left edge clamps", -5, 20, 0},
		{"zero width", 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProgressFromPosition(tt.x, tt.width); got != tt.want {
				t.Errorf("ProgressFromPosition(%d, %d) = %d, want %d", tt.x, tt.width, got, tt.want)
			}
		})
	}
}

func TestSearchAndFilter(t *testing.T) {
	items := []models.ContentItem{
		{ID: "a", Title: "Deep Work", Type: models.TypeBook, Status: models.StatusTodo, Tags: []string{"focus"}},
		{ID: "b", Title: "A Talk", Type: models.TypeVideo, Status: models.StatusInProgress, Tags: []string{"conference"}},
		{ID: "c", Title: "Essay", Type: models.TypeArticle, Status: models.StatusCompleted, Tags: []string{"Focus", "writing"}},
	}

	t.Run("search matches title case-insensitively", func(t *testing.T) {
		got := Search(items, "deep")
		if len(got) != 1 || got[0].ID != "a" {
			t.Errorf("unexpected result: %+v", got)
		}
	})

	t.Run("search matches tags", func(t *testing.T) {
		got := Search(items, "focus")
		if len(got) != 2 {
			t.Errorf("expected 2 tag matches, got %d", len(got))
		}
	})

	t.Run("empty query matches all", func(t *testing.T) {
		if got := Search(items, "  "); len(got) != 3 {
			t.Errorf("expected all items, got %d", len(got))
		}
	})

	t.Run("tab filters by type", func(t *testing.T) {
		got := FilterTab(items, "video")
		if len(got) != 1 || got[0].ID != "b" {
			t.Errorf("unexpected result: %+v", got)
		}
	})

	t.Run("tab filters by status", func(t *testing.T) {
		got := FilterTab(items, "completed")
		if len(got) != 1 || got[0].ID != "c" {
			t.Errorf("unexpected result: %+v", got)
		}
	})

	t.Run("all tab passes through", func(t *testing.T) {
		if got := FilterTab(items, "all"); len(got) != 3 {
			t.Errorf("expected all items, got %d", len(got))
		}
	})

	t.Run("counts", func(t *testing.T) {
		stats := Count(items)
		if stats.Total != 3 || stats.Todo != 1 || stats.InProgress != 1 || stats.Completed != 1 {
			t.Errorf("unexpected stats: %+v", stats)
		}
	})
}
