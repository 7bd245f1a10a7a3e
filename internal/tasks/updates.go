package tasks

import (
	"fmt"

	"github.com/desertthunder/traylist/internal/models"
)

// ProgressUpdate represents a progress event during a drain.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	SnapshotQueue Phase = iota
	WriteItem
	ClearBatch
	DrainComplete
)

func (p Phase) String() string {
	switch p {
	case SnapshotQueue:
		return "snapshot_queue"
	case WriteItem:
		return "write_item"
	case ClearBatch:
		return "clear_batch"
	case DrainComplete:
		return "drain_complete"
	default:
		return ""
	}
}

func snapshotUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SnapshotQueue,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Draining %d pending item(s)...", total),
	}
}

func writeItemUpdate(step, total int, entry models.QueueEntry) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteItem,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, entry.Request.Title),
	}
}

func clearBatchUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ClearBatch,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Clearing %d synced item(s) from the queue...", total),
	}
}

func drainCompleteUpdate(result *DrainResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DrainComplete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Synced %d item(s)", result.Drained),
		Data:    result,
	}
}
