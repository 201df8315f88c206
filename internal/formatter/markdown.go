// Package formatter renders ingestion results as markdown for terminals and logs.
package formatter

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"procfeed/internal/crawler"
	"procfeed/internal/models"
)

// maxCellWidth bounds a cell's display width; longer values are cut with an ellipsis.
const maxCellWidth = 40

var entryColumns = []string{"Order", "Delivery", "Supplier", "Buyer", "Total", "Status"}

// FormatReport renders a run summary followed by a table of the accepted entries.
func FormatReport(result *crawler.IngestResult) string {
	if result == nil {
		return ""
	}

	var sb strings.Builder

	sb.WriteString("## Ingestion report\n\n")

	if result.Metadata != nil {
		fmt.Fprintf(&sb, "- Source: %s\n", result.Metadata.SourceURL)
		fmt.Fprintf(&sb, "- Run: %s (%d bytes, sha256 %s)\n", result.Metadata.RunID, result.Metadata.Bytes, result.Metadata.ShortHash())
	}

	format := string(result.Format)
	if result.Wrapper != "" {
		format += " (" + result.Wrapper + ")"
	}

	fmt.Fprintf(&sb, "- Format: %s\n", format)
	fmt.Fprintf(&sb, "- Found: %d, accepted: %d, rejected: %d\n", result.Found, result.Accepted(), len(result.Rejections))

	if len(result.TopLevelKeys) > 0 {
		fmt.Fprintf(&sb, "- Top-level keys: %s\n", strings.Join(result.TopLevelKeys, ", "))
	}

	if len(result.Entries) == 0 {
		return sb.String()
	}

	sb.WriteString("\n")

	rows := make([][]string, 0, len(result.Entries))
	for _, e := range result.Entries {
		rows = append(rows, entryRow(e))
	}

	for _, line := range renderTable(entryColumns, rows) {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatRejections lists one diagnostic line per rejected element.
func FormatRejections(result *crawler.IngestResult) string {
	if result == nil || len(result.Rejections) == 0 {
		return ""
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "## Rejected elements (%d)\n\n", len(result.Rejections))

	for _, line := range result.RejectedErrors() {
		sb.WriteString("- ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}

func entryRow(e *models.CanonicalProcurementEntry) []string {
	return []string{
		e.ElectronicOrderID,
		fmt.Sprintf("%d/%d", e.DeliveryNumber, e.TotalDeliveries),
		e.SupplierName,
		e.BuyerName,
		fmt.Sprintf("%.2f", e.TotalAmount),
		e.OrderStatus,
	}
}

// renderTable lays out a markdown table whose columns are padded to the widest cell,
// measured in terminal display width so CJK and accented text line up.
func renderTable(header []string, rows [][]string) []string {
	widths := make([]int, len(header))

	cells := make([][]string, 0, len(rows)+1)
	cells = append(cells, header)

	for _, row := range rows {
		clean := make([]string, len(header))
		for i := range header {
			if i < len(row) {
				clean[i] = cleanCell(row[i])
			}
		}

		cells = append(cells, clean)
	}

	for _, row := range cells {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	// Separator rows need at least three dashes.
	for i := range widths {
		widths[i] = max(widths[i], 3)
	}

	lines := make([]string, 0, len(cells)+1)

	for i, row := range cells {
		lines = append(lines, joinRow(row, widths))

		if i == 0 {
			sep := make([]string, len(widths))
			for j, w := range widths {
				sep[j] = strings.Repeat("-", w)
			}

			lines = append(lines, joinRow(sep, widths))
		}
	}

	return lines
}

func joinRow(row []string, widths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for i, cell := range row {
		sb.WriteString(" ")
		sb.WriteString(runewidth.FillRight(cell, widths[i]))
		sb.WriteString(" |")
	}

	return sb.String()
}

func cleanCell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, "|", `\|`)

	return runewidth.Truncate(s, maxCellWidth, "…")
}
