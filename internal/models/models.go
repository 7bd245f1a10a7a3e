package models

import (
	"fmt"
	"strings"
	"time"
)

// ContentType enumerates the kinds of content a user can track.
type ContentType string

const (
	TypeArticle ContentType = "article"
	TypeVideo   ContentType = "video"
	TypeBook    ContentType = "book"
	TypeShow    ContentType = "show"
)

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	switch t {
	case TypeArticle, TypeVideo, TypeBook, TypeShow:
		return true
	}
	return false
}

// Status enumerates the lifecycle states of a tracked item.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// StatusForProgress derives an item's status from its progress percentage.
//
// progress <= 0 is todo, 100 and above is completed, everything between is
// in-progress. Status is never stored independently of progress; callers
// write the derived pair together.
func StatusForProgress(progress int) Status {
	switch {
	case progress <= 0:
		return StatusTodo
	case progress >= 100:
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

// ClampProgress bounds a progress value to the valid [0, 100] range.
func ClampProgress(progress int) int {
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// videoHosts are URL substrings that flip the default capture type to video.
var videoHosts = []string{"youtube.com", "youtu.be", "vimeo.com"}

// DetectContentType guesses a content type from a source URL.
//
// URLs matching a known video host default to video; everything else
// defaults to article.
func DetectContentType(sourceURL string) ContentType {
	lowered := strings.ToLower(sourceURL)
	for _, host := range videoHosts {
		if strings.Contains(lowered, host) {
			return TypeVideo
		}
	}
	return TypeArticle
}

// IdentityToken is the serialized identity mirrored into shared storage by
// the auth bridge. It is overwritten on every auth transition and deleted
// entirely on sign-out. All components other than the bridge read it only.
type IdentityToken struct {
	SubjectID   string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	AccessToken string    `json:"accessToken"`
	CapturedAt  time.Time `json:"capturedAt"`
}

// Valid reports whether the token carries a usable identity.
func (t *IdentityToken) Valid() bool {
	return t != nil && t.SubjectID != ""
}

// CaptureRequest is a user's request to save a piece of external content,
// composed at confirmation time in the capture popup.
type CaptureRequest struct {
	Title string      `json:"title"`
	Type  ContentType `json:"type"`
	// Tags preserve insertion order; duplicates are allowed.
	Tags      []string  `json:"tags"`
	Notes     string    `json:"notes"`
	SourceURL string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the request for local input errors. Title is the only
// required field.
func (r *CaptureRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if r.Type != "" && !r.Type.Valid() {
		return fmt.Errorf("unknown content type: %s", r.Type)
	}
	return nil
}

// QueueEntry is a CaptureRequest stamped at enqueue time. Entries are
// immutable once queued.
type QueueEntry struct {
	// Seq is the append-order sequence assigned by the queue; it defines
	// FIFO drain order and the batch boundary for atomic clears.
	Seq        int64          `json:"-"`
	Request    CaptureRequest `json:"request"`
	UserID     string         `json:"userId"`
	Status     Status         `json:"status"`
	Progress   int            `json:"progress"`
	EnqueuedAt time.Time      `json:"enqueuedAt"`
}

// NewQueueEntry stamps a capture request for appending to the queue.
// Every queued entry starts at todo with zero progress.
func NewQueueEntry(req CaptureRequest, userID string, now time.Time) QueueEntry {
	return QueueEntry{
		Request:    req,
		UserID:     userID,
		Status:     StatusTodo,
		Progress:   0,
		EnqueuedAt: now,
	}
}

// ContentItem is the remote, authoritative representation of a tracked
// piece of content. The dashboard's local copy is a cache, never a second
// authority.
type ContentItem struct {
	ID       string      `json:"id,omitempty"`
	Title    string      `json:"title"`
	Type     ContentType `json:"type"`
	Status   Status      `json:"status"`
	Progress int         `json:"progress"`
	Tags     []string    `json:"tags"`
	// AddedDate uses the host application's date format (ISO 8601).
	AddedDate string `json:"addedDate"`
	UserID    string `json:"userId"`
	Author    string `json:"author,omitempty"`
	Duration  string `json:"duration,omitempty"`
	ReadTime  string `json:"readTime,omitempty"`
	Episodes  string `json:"episodes,omitempty"`
	URL       string `json:"url,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Validate checks the item's required fields and the status/progress pair.
func (c *ContentItem) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if c.UserID == "" {
		return fmt.Errorf("userId is required")
	}
	if !c.Type.Valid() {
		return fmt.Errorf("unknown content type: %s", c.Type)
	}
	if c.Progress < 0 || c.Progress > 100 {
		return fmt.Errorf("progress out of range: %d", c.Progress)
	}
	if c.Status != StatusForProgress(c.Progress) {
		return fmt.Errorf("status %q inconsistent with progress %d", c.Status, c.Progress)
	}
	return nil
}

// ItemFromEntry converts a queued capture into the ContentItem written to
// the remote store during a drain.
func ItemFromEntry(entry QueueEntry) ContentItem {
	tags := entry.Request.Tags
	if tags == nil {
		tags = []string{}
	}
	return ContentItem{
		Title:     entry.Request.Title,
		Type:      entry.Request.Type,
		Status:    entry.Status,
		Progress:  entry.Progress,
		Tags:      tags,
		AddedDate: entry.EnqueuedAt.Format(time.RFC3339),
		UserID:    entry.UserID,
		URL:       entry.Request.SourceURL,
		Notes:     entry.Request.Notes,
	}
}
