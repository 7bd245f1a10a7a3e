// package formatter provides functions to render content lists to various formats (table, CSV, Markdown, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/desertthunder/traylist/internal/models"
	"github.com/desertthunder/traylist/internal/shared"
)

// RenderTable converts content items to an aligned text table with columns: Title, Type, Status, Progress, Tags
func RenderTable(items []models.ContentItem) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "TITLE\tTYPE\tSTATUS\tPROGRESS\tTAGS")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\t%s\n",
			item.Title, item.Type, item.Status, item.Progress, strings.Join(item.Tags, ", "))
	}

	w.Flush()
	return buf.String()
}

// ExportToCSV converts content items to CSV format with columns: ID, Title, Type, Status, Progress, Tags, Added, URL
func ExportToCSV(items []models.ContentItem) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Type", "Status", "Progress", "Tags", "Added", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		record := []string{
			item.ID,
			item.Title,
			string(item.Type),
			string(item.Status),
			strconv.Itoa(item.Progress),
			strings.Join(item.Tags, ";"),
			item.AddedDate,
			item.URL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts content items to a Markdown checklist grouped under a heading
func ExportToMarkdown(items []models.ContentItem, heading string) ([]byte, error) {
	var buf bytes.Buffer

	if heading == "" {
		heading = "Content"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", heading))
	buf.WriteString(fmt.Sprintf("**Items**: %d\n\n", len(items)))

	for _, item := range items {
		check := " "
		if item.Status == models.StatusCompleted {
			check = "x"
		}
		line := fmt.Sprintf("- [%s] %s (%s", check, item.Title, item.Type)
		if item.Progress > 0 && item.Progress < 100 {
			line += fmt.Sprintf(", %d%%", item.Progress)
		}
		line += ")"
		if len(item.Tags) > 0 {
			line += " `" + strings.Join(item.Tags, "` `") + "`"
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// ToJSON generates a JSON representation of the content list
func ToJSON(items []models.ContentItem, pretty bool) ([]byte, error) {
	return shared.MarshalJSON(items, pretty)
}

// WriteCSVExport writes the content list to {base}.csv, defaulting the base filename to "traylist"
func WriteCSVExport(items []models.ContentItem, baseFilepath string) (string, error) {
	if baseFilepath == "" {
		baseFilepath = "traylist"
	}

	csvData, err := ExportToCSV(items)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	outFile := baseFilepath + ".csv"
	if err := os.WriteFile(outFile, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return outFile, nil
}
