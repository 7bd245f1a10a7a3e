package tasks

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/traylist/internal/messaging"
	"github.com/desertthunder/traylist/internal/models"
	"github.com/desertthunder/traylist/internal/repositories"
	"github.com/desertthunder/traylist/internal/shared"
	internaltesting "github.com/desertthunder/traylist/internal/testing"
)

func setupQueue(t *testing.T) (*repositories.QueueRepository, *sql.DB) {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return repositories.NewQueueRepository(db), db
}

func enqueue(t *testing.T, queue *repositories.QueueRepository, titles ...string) {
	t.Helper()
	for _, title := range titles {
		entry := models.NewQueueEntry(models.CaptureRequest{
			Title:     title,
			Type:      models.TypeArticle,
			SourceURL: "https://example.com/" + title,
			CreatedAt: time.Now(),
		}, "u1", time.Now())
		if _, err := queue.Append(entry); err != nil {
			t.Fatalf("failed to enqueue %s: %v", title, err)
		}
	}
}

func TestDrainEmptyQueue(t *testing.T) {
	queue, _ := setupQueue(t)
	store := internaltesting.NewMockStore()
	drainer := NewDrainer(DrainerOpts{Queue: queue, Store: store})

	result, err := drainer.Drain(context.Background(), nil)
	if err != nil {
		t.Fatalf("drain failed: %v", err)
	}
	if result.Drained != 0 {
		t.Errorf("expected nothing drained, got %d", result.Drained)
	}
	if store.Creates() != 0 {
		t.Error("empty drain must not touch the remote store")
	}
}

func TestDrainDeliversExactlyOneItemPerEntry(t *testing.T) {
	queue, _ := setupQueue(t)
	store := internaltesting.NewMockStore()
	drainer := NewDrainer(DrainerOpts{Queue: queue, Store: store})

	// Captures appended while offline...
	enqueue(t, queue, "one", "two", "three")

	// ...are delivered exactly once after connectivity returns.
	result, err := drainer.Drain(context.Background(), nil)
	if err != nil {
		t.Fatalf("drain failed: %v", err)
	}
	if result.Drained != 3 {
		t.Errorf("expected 3 drained, got %d", result.Drained)
	}

	items, _ := store.ListItems(context.Background(), "u1")
	if len(items) != 3 {
		t.Errorf("expected 3 remote items, got %d", len(items))
	}

	remaining, err := queue.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected empty queue after drain, got %d entries", len(remaining))
	}
}

func TestDrainBatchIsAllOrNothing(t *testing.T) {
	queue, _ := setupQueue(t)
	store := internaltesting.NewMockStore()
	store.FailAfter = 2 // second write of the batch fails
	drainer := NewDrainer(DrainerOpts{Queue: queue, Store: store})

	enqueue(t, queue, "one", "two", "three")

	before, err := queue.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	if _, err := drainer.Drain(context.Background(), nil); err == nil {
		t.Fatal("expected drain to fail")
	}

	// Mid-batch failure leaves the queue exactly as it was.
	after, err := queue.Snapshot()
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("queue changed after failed drain: %d -> %d entries", len(before), len(after))
	}
	for i := range before {
		if after[i].Seq != before[i].Seq || after[i].Request.Title != before[i].Request.Title {
			t.Errorf("entry %d changed after failed drain", i)
		}
	}

	// Next trigger retries the full batch.
	store.FailAfter = 0
	result, err := drainer.Drain(context.Background(), nil)
	if err != nil {
		t.Fatalf("retry drain failed: %v", err)
	}
	if result.Drained != 3 {
		t.Errorf("expected full batch retried, got %d", result.Drained)
	}
}

func TestDrainScenarioCaptureToRemote(t *testing.T) {
	queue, _ := setupQueue(t)
	store := internaltesting.NewMockStore()
	drainer := NewDrainer(DrainerOpts{Queue: queue, Store: store})

	entry := models.NewQueueEntry(models.CaptureRequest{
		Title:     "Deep Work",
		Type:      models.TypeBook,
		SourceURL: "https://example.com/book",
		CreatedAt: time.Now(),
	}, "u1", time.Now())

	if _, err := queue.Append(entry); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	queued, _ := queue.Snapshot()
	if queued[0].Status != models.StatusTodo || queued[0].Progress != 0 {
		t.Fatalf("queued entry should be todo/0, got %s/%d", queued[0].Status, queued[0].Progress)
	}

	if _, err := drainer.Drain(context.Background(), nil); err != nil {
		t.Fatalf("drain failed: %v", err)
	}

	items, _ := store.ListItems(context.Background(), "u1")
	if len(items) != 1 {
		t.Fatalf("expected one remote item, got %d", len(items))
	}
	if items[0].UserID != "u1" || items[0].Status != models.StatusTodo {
		t.Errorf("unexpected remote item: %+v", items[0])
	}
}

func TestDrainSingleFlight(t *testing.T) {
	queue, _ := setupQueue(t)
	store := internaltesting.NewMockStore()
	drainer := NewDrainer(DrainerOpts{Queue: queue, Store: store})

	enqueue(t, queue, "one", "two")

	// Two drains triggered back-to-back: the batch must never be split or
	// double-submitted. The second drain serializes behind the first and
	// observes an empty queue.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			drainer.Drain(context.Background(), nil)
		}()
	}
	wg.Wait()

	if store.Creates() != 2 {
		t.Errorf("expected exactly 2 remote writes, got %d", store.Creates())
	}
}

func TestDrainLeavesMidDrainAppendsForNextTrigger(t *testing.T) {
	queue, _ := setupQueue(t)
	store := internaltesting.NewMockStore()
	drainer := NewDrainer(DrainerOpts{Queue: queue, Store: store})

	enqueue(t, queue, "one")

	snapshot, _ := queue.Snapshot()
	_ = snapshot

	// Simulate an append landing between snapshot and clear by appending
	// before the drain's clear runs: entries beyond the snapshot seq stay.
	if _, err := drainer.Drain(context.Background(), nil); err != nil {
		t.Fatalf("drain failed: %v", err)
	}

	enqueue(t, queue, "late")
	remaining, _ := queue.Snapshot()
	if len(remaining) != 1 || remaining[0].Request.Title != "late" {
		t.Errorf("expected late entry to remain queued, got %+v", remaining)
	}
}

func TestRunDrainsOnStartupAndSignal(t *testing.T) {
	queue, _ := setupQueue(t)
	store := internaltesting.NewMockStore()
	bus := messaging.NewBus()
	drainer := NewDrainer(DrainerOpts{Queue: queue, Store: store, Bus: bus})

	enqueue(t, queue, "startup-item")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		drainer.Run(ctx)
	}()

	waitFor(t, func() bool { return store.Creates() == 1 })

	// Append then signal, as the capture handler does.
	enqueue(t, queue, "signaled-item")
	bus.SignalSync()

	waitFor(t, func() bool { return store.Creates() == 2 })

	cancel()
	<-done
}

func TestRunRecoveryTimerRetriesFailedStartupDrain(t *testing.T) {
	queue, _ := setupQueue(t)
	store := internaltesting.NewMockStore()
	store.FailAfter = 1 // startup drain fails
	bus := messaging.NewBus()
	drainer := NewDrainer(DrainerOpts{
		Queue:         queue,
		Store:         store,
		Bus:           bus,
		RetryInterval: 10 * time.Millisecond,
	})

	enqueue(t, queue, "stranded-item")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		drainer.Run(ctx)
	}()

	waitFor(t, func() bool { return store.Creates() >= 1 })
	store.SetFailAfter(0)

	// With no further append signal, only the recovery timer can save the
	// stranded entry.
	waitFor(t, func() bool {
		items, _ := store.ListItems(context.Background(), "u1")
		return len(items) == 1
	})

	cancel()
	<-done
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
