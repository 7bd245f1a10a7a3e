package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/traylist/internal/models"
)

var _ list.Item = contentItem{}

// contentItem wraps [models.ContentItem] to implement [list.Item].
type contentItem struct {
	item models.ContentItem
}

func (i contentItem) FilterValue() string {
	return i.item.Title + " " + strings.Join(i.item.Tags, " ")
}

func (i contentItem) Title() string { return i.item.Title }

func (i contentItem) Description() string {
	desc := fmt.Sprintf("%s • %s", i.item.Type, i.item.Status)
	if i.item.Status == models.StatusInProgress {
		desc = fmt.Sprintf("%s (%d%%)", desc, i.item.Progress)
	}
	if len(i.item.Tags) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, strings.Join(i.item.Tags, ", "))
	}
	return desc
}
