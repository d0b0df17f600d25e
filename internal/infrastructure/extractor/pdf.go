package extractor

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// pdfText tries the structured PDF parser first and falls back to
// scanning the raw bytes for printable runs when parsing fails.
func (e *Extractor) pdfText(raw []byte, filename string) string {
	text, err := parsePDF(raw)
	if err == nil && strings.TrimSpace(text) != "" {
		return text
	}
	if err != nil {
		e.logger.Warn("pdf_parse_fallback", "filename", filename, "error", err)
	}
	return printableRuns(raw)
}

func parsePDF(raw []byte) (text string, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plain text: %w", err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(out), nil
}

const minPrintableRun = 4

// printableRuns scans bytes for contiguous runs of printable ASCII,
// discards runs shorter than minPrintableRun as encoding noise, and joins
// survivors with single spaces.
func printableRuns(raw []byte) string {
	var runs []string
	var run strings.Builder

	flush := func() {
		trimmed := strings.TrimSpace(run.String())
		if len(trimmed) >= minPrintableRun {
			runs = append(runs, trimmed)
		}
		run.Reset()
	}

	for _, b := range raw {
		if b >= 0x20 && b <= 0x7e {
			run.WriteByte(b)
			continue
		}
		flush()
	}
	flush()

	return strings.Join(runs, " ")
}

// plainText decodes bytes as UTF-8, replacing invalid sequences rather
// than rejecting the document.
func plainText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	return strings.ToValidUTF8(string(raw), "�")
}
