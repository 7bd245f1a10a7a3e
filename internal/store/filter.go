package store

import (
	"strings"

	"github.com/desertthunder/traylist/internal/models"
)

// Stats are the dashboard's summary counts.
type Stats struct {
	Total      int
	Todo       int
	InProgress int
	Completed  int
}

// Search filters items by a case-insensitive substring match on title or
// any tag. An empty query matches everything.
func Search(items []models.ContentItem, query string) []models.ContentItem {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}

	var out []models.ContentItem
	for _, item := range items {
		if matches(item, query) {
			out = append(out, item)
		}
	}
	return out
}

func matches(item models.ContentItem, query string) bool {
	if strings.Contains(strings.ToLower(item.Title), query) {
		return true
	}
	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// FilterTab narrows items to a dashboard tab: "all", a content type, or a
// status name. Unknown tabs match nothing.
func FilterTab(items []models.ContentItem, tab string) []models.ContentItem {
	if tab == "" || tab == "all" {
		return items
	}

	var out []models.ContentItem
	for _, item := range items {
		if string(item.Type) == tab || string(item.Status) == tab {
			out = append(out, item)
		}
	}
	return out
}

// Count tallies items by status.
func Count(items []models.ContentItem) Stats {
	stats := Stats{Total: len(items)}
	for _, item := range items {
		switch item.Status {
		case models.StatusTodo:
			stats.Todo++
		case models.StatusInProgress:
			stats.InProgress++
		case models.StatusCompleted:
			stats.Completed++
		}
	}
	return stats
}
