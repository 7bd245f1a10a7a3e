package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/traylist/internal/models"
)

// QueueRepository is the append-then-clear log of pending captures.
//
// Entries are appended by the capture handler and removed only as a whole
// batch by the drainer after a confirmed remote write. Rows are never
// updated in place.
type QueueRepository struct {
	db *sql.DB
}

// NewQueueRepository creates a new [QueueRepository] with the given database connection
func NewQueueRepository(db *sql.DB) *QueueRepository {
	return &QueueRepository{db: db}
}

// Append durably persists entry before returning. The caller may be torn
// down immediately after this returns; the entry survives.
func (r *QueueRepository) Append(entry models.QueueEntry) (int64, error) {
	tags, err := json.Marshal(entry.Request.Tags)
	if err != nil {
		return 0, fmt.Errorf("failed to encode tags: %w", err)
	}

	query := `
		INSERT INTO pending_content
			(title, content_type, tags, notes, source_url, created_at, user_id, status, progress, enqueued_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.Exec(query,
		entry.Request.Title,
		string(entry.Request.Type),
		string(tags),
		entry.Request.Notes,
		entry.Request.SourceURL,
		entry.Request.CreatedAt,
		entry.UserID,
		string(entry.Status),
		entry.Progress,
		entry.EnqueuedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append queue entry: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read sequence: %w", err)
	}

	return seq, nil
}

// Snapshot returns the current queue contents in FIFO append order.
//
// A drain operates on the snapshot taken at drain start; entries appended
// during an in-flight drain carry a higher sequence and are left for the
// next trigger.
func (r *QueueRepository) Snapshot() ([]models.QueueEntry, error) {
	query := `
		SELECT seq, title, content_type, tags, notes, source_url, created_at,
			user_id, status, progress, enqueued_at
		FROM pending_content
		ORDER BY seq ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query queue: %w", err)
	}
	defer rows.Close()

	var entries []models.QueueEntry
	for rows.Next() {
		var (
			entry      models.QueueEntry
			tagsRaw    string
			typeRaw    string
			statusRaw  string
			createdAt  time.Time
			enqueuedAt time.Time
		)

		err := rows.Scan(
			&entry.Seq,
			&entry.Request.Title,
			&typeRaw,
			&tagsRaw,
			&entry.Request.Notes,
			&entry.Request.SourceURL,
			&createdAt,
			&entry.UserID,
			&statusRaw,
			&entry.Progress,
			&enqueuedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue entry: %w", err)
		}

		if err := json.Unmarshal([]byte(tagsRaw), &entry.Request.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags for entry %d: %w", entry.Seq, err)
		}

		entry.Request.Type = models.ContentType(typeRaw)
		entry.Request.CreatedAt = createdAt
		entry.Status = models.Status(statusRaw)
		entry.EnqueuedAt = enqueuedAt

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Clear atomically removes every entry up to and including maxSeq.
//
// Called only after the whole batch was confirmed by the remote store.
// Entries appended after the snapshot (seq > maxSeq) are untouched.
func (r *QueueRepository) Clear(maxSeq int64) error {
	if _, err := r.db.Exec("DELETE FROM pending_content WHERE seq <= ?", maxSeq); err != nil {
		return fmt.Errorf("failed to clear queue batch: %w", err)
	}
	return nil
}

// Len returns the number of pending entries.
func (r *QueueRepository) Len() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM pending_content").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count queue entries: %w", err)
	}
	return count, nil
}
