// Package extractor turns stored document bytes into best-effort plain
// text. Parse failures never abort ingestion: they degrade to a
// placeholder naming the file. Only storage access errors propagate.
package extractor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/studyvault/studyvault/internal/core/domain"
	"github.com/studyvault/studyvault/internal/core/ports"
)

// strategy is the closed set of supported extraction routes. Adding a
// structured parser for a new format means adding a variant here without
// touching pipeline control flow.
type strategy int

const (
	strategyPlainText strategy = iota
	strategyPDF
	strategySpreadsheet
	strategyBinaryScan
)

type Extractor struct {
	storage ports.ObjectStorage

	maxChars int
	minChars int
	logger   *slog.Logger
}

func New(storage ports.ObjectStorage, maxChars, minChars int, logger *slog.Logger) *Extractor {
	if maxChars <= 0 {
		maxChars = 500_000
	}
	if minChars <= 0 {
		minChars = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		storage:  storage,
		maxChars: maxChars,
		minChars: minChars,
		logger:   logger,
	}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}

	var text string
	switch pickStrategy(doc.MediaType, doc.Filename) {
	case strategyPDF:
		text = e.pdfText(raw, doc.Filename)
	case strategySpreadsheet:
		text = e.spreadsheetText(raw, doc.Filename)
	case strategyPlainText:
		text = plainText(raw)
	default:
		text = printableRuns(raw)
	}

	text = strings.TrimSpace(text)
	if len(text) < e.minChars {
		e.logger.Warn("extraction_below_minimum",
			"document_id", doc.ID,
			"filename", doc.Filename,
			"chars", len(text),
		)
		text = placeholder(doc.Filename)
	}

	return truncate(text, e.maxChars), nil
}

func pickStrategy(mediaType, filename string) strategy {
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case mediaType == "application/pdf" || ext == ".pdf":
		return strategyPDF
	case strings.Contains(mediaType, "spreadsheet") || ext == ".xlsx" || ext == ".xlsm":
		return strategySpreadsheet
	case strings.HasPrefix(mediaType, "text/"),
		mediaType == "application/json",
		mediaType == "application/csv",
		ext == ".txt", ext == ".md", ext == ".csv", ext == ".json":
		return strategyPlainText
	}
	return strategyBinaryScan
}

func placeholder(filename string) string {
	return fmt.Sprintf(
		"Document %q did not yield readable text and may require OCR or additional processing.",
		filename,
	)
}

// truncate cuts at a byte budget without splitting a multi-byte rune.
func truncate(text string, maxChars int) string {
	if len(text) <= maxChars {
		return text
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
