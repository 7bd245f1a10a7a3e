package formatter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/traylist/internal/models"
)

func sampleItems() []models.ContentItem {
	return []models.ContentItem{
		{
			ID:        "item-1",
			Title:     "Deep Work",
			Type:      models.TypeBook,
			Status:    models.StatusInProgress,
			Progress:  40,
			Tags:      []string{"focus", "productivity"},
			AddedDate: "2026-08-01T10:00:00Z",
			URL:       "https://example.com/book",
			UserID:    "u1",
		},
		{
			ID:        "item-2",
			Title:     "A Talk",
			Type:      models.TypeVideo,
			Status:    models.StatusCompleted,
			Progress:  100,
			Tags:      []string{},
			AddedDate: "2026-08-02T10:00:00Z",
			UserID:    "u1",
		},
	}
}

func TestRenderTable(t *testing.T) {
	output := RenderTable(sampleItems())

	if !strings.Contains(output, "TITLE") || !strings.Contains(output, "PROGRESS") {
		t.Errorf("table missing headers, got: %s", output)
	}
	if !strings.Contains(output, "Deep Work") {
		t.Errorf("table missing title")
	}
	if !strings.Contains(output, "40%") {
		t.Errorf("table missing progress")
	}
	if !strings.Contains(output, "focus, productivity") {
		t.Errorf("table missing tags")
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleItems())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "ID,Title,Type,Status,Progress,Tags,Added,URL") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "item-1") {
			t.Errorf("CSV missing item id")
		}
		if !strings.Contains(output, "Deep Work") {
			t.Errorf("CSV missing item title")
		}
		if !strings.Contains(output, "focus;productivity") {
			t.Errorf("CSV missing joined tags")
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleItems(), "Reading List")
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "# Reading List") {
			t.Errorf("Markdown missing heading, got: %s", output)
		}
		if !strings.Contains(output, "- [ ] Deep Work (book, 40%)") {
			t.Errorf("Markdown missing in-progress item, got: %s", output)
		}
		if !strings.Contains(output, "- [x] A Talk (video)") {
			t.Errorf("Markdown missing completed item, got: %s", output)
		}
	})

	t.Run("ToJSON", func(t *testing.T) {
		data, err := ToJSON(sampleItems(), true)
		if err != nil {
			t.Fatalf("ToJSON failed: %v", err)
		}
		if !strings.Contains(string(data), `"title": "Deep Work"`) {
			t.Errorf("JSON missing item, got: %s", data)
		}
	})
}

func TestWriteCSVExport(t *testing.T) {
	base := filepath.Join(t.TempDir(), "export")

	outFile, err := WriteCSVExport(sampleItems(), base)
	if err != nil {
		t.Fatalf("WriteCSVExport failed: %v", err)
	}
	if outFile != base+".csv" {
		t.Errorf("unexpected output path: %s", outFile)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if !strings.Contains(string(data), "Deep Work") {
		t.Errorf("export missing content, got: %s", data)
	}
}
