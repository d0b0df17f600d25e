package extractor

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

// spreadsheetText flattens workbook cells into text: cells joined by
// spaces, rows by newlines, sheets by blank lines. Parse failures degrade
// to the printable-run scan like any other binary format.
func (e *Extractor) spreadsheetText(raw []byte, filename string) string {
	file, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		e.logger.Warn("spreadsheet_parse_fallback", "filename", filename, "error", err)
		return printableRuns(raw)
	}
	defer file.Close()

	var b strings.Builder
	for _, sheet := range file.GetSheetList() {
		rows, err := file.GetRows(sheet)
		if err != nil {
			continue
		}
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, " "))
			if line == "" {
				continue
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteString("\n")
	}
	return b.String()
}
