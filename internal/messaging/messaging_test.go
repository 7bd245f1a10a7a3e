package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/traylist/internal/models"
	"github.com/desertthunder/traylist/internal/shared"
)

func TestSaveWithoutHandler(t *testing.T) {
	bus := NewBus()

	_, err := bus.Save(context.Background(), SaveContent{UserID: "u1"})
	if !errors.Is(err, shared.ErrHandlerUnreachable) {
		t.Errorf("expected ErrHandlerUnreachable, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	bus := NewBus()

	var received SaveContent
	bus.HandleSave(func(ctx context.Context, msg SaveContent) SaveResult {
		received = msg
		return SaveResult{Success: true}
	})

	msg := SaveContent{
		Request: models.CaptureRequest{Title: "Deep Work", Type: models.TypeBook},
		UserID:  "u1",
	}

	result, err := bus.Save(context.Background(), msg)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !result.Success {
		t.Errorf("expected success, got %+v", result)
	}
	if received.UserID != "u1" || received.Request.Title != "Deep Work" {
		t.Errorf("handler received wrong message: %+v", received)
	}
}

func TestSaveHandlerFailure(t *testing.T) {
	bus := NewBus()
	bus.HandleSave(func(ctx context.Context, msg SaveContent) SaveResult {
		return Failure(errors.New("disk full"))
	})

	result, err := bus.Save(context.Background(), SaveContent{})
	if err != nil {
		t.Fatalf("save transport should succeed: %v", err)
	}
	if result.Success {
		t.Error("expected failure result")
	}
	if result.Err != "disk full" {
		t.Errorf("expected error string to cross the boundary, got %q", result.Err)
	}
}

func TestSaveCancelledContext(t *testing.T) {
	bus := NewBus()
	bus.HandleSave(func(ctx context.Context, msg SaveContent) SaveResult {
		return SaveResult{Success: true}
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := bus.Save(ctx, SaveContent{}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestSignalsCoalesce(t *testing.T) {
	bus := NewBus()

	// Multiple posts before delivery collapse into one pending signal.
	bus.SignalSync()
	bus.SignalSync()
	bus.SignalSync()

	select {
	case <-bus.SyncSignals():
	default:
		t.Fatal("expected a pending sync signal")
	}

	select {
	case <-bus.SyncSignals():
		t.Error("expected signals to coalesce into a single delivery")
	default:
	}
}

func TestAuthSyncSignal(t *testing.T) {
	bus := NewBus()
	bus.SignalAuthSync()

	select {
	case <-bus.AuthSyncSignals():
	default:
		t.Error("expected a pending auth sync signal")
	}
}
