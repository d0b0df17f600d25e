package extractor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/studyvault/studyvault/internal/core/domain"
)

type storageFake struct {
	objects map[string][]byte
	openErr error
}

func (f *storageFake) Save(context.Context, string, io.Reader) error { return nil }

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	raw, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such object")
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *storageFake) Delete(context.Context, string) error { return nil }

func doc(path, filename, mediaType string) *domain.Document {
	return &domain.Document{ID: "doc-1", StoragePath: path, Filename: filename, MediaType: mediaType}
}

func TestExtractPlainText(t *testing.T) {
	content := strings.Repeat("Plain notes about cell biology. ", 4)
	storage := &storageFake{objects: map[string][]byte{"user-1/doc.txt": []byte(content)}}
	e := New(storage, 0, 0, nil)

	got, err := e.Extract(context.Background(), doc("user-1/doc.txt", "doc.txt", "text/plain"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != strings.TrimSpace(content) {
		t.Fatalf("text = %q", got)
	}
}

func TestExtractStorageErrorPropagates(t *testing.T) {
	storage := &storageFake{openErr: errors.New("bucket unreachable")}
	e := New(storage, 0, 0, nil)

	if _, err := e.Extract(context.Background(), doc("user-1/doc.txt", "doc.txt", "text/plain")); err == nil {
		t.Fatalf("expected storage error to propagate")
	}
}

func TestExtractShortYieldBecomesPlaceholder(t *testing.T) {
	storage := &storageFake{objects: map[string][]byte{"user-1/doc.txt": []byte("hi")}}
	e := New(storage, 0, 50, nil)

	got, err := e.Extract(context.Background(), doc("user-1/doc.txt", "doc.txt", "text/plain"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(got, `"doc.txt"`) || !strings.Contains(got, "OCR") {
		t.Fatalf("placeholder = %q", got)
	}
}

func TestExtractTruncatesAtMaxChars(t *testing.T) {
	content := strings.Repeat("abcdefghij", 100)
	storage := &storageFake{objects: map[string][]byte{"user-1/doc.txt": []byte(content)}}
	e := New(storage, 200, 50, nil)

	got, err := e.Extract(context.Background(), doc("user-1/doc.txt", "doc.txt", "text/plain"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(got) != 200 {
		t.Fatalf("len = %d, want 200", len(got))
	}
}

func TestExtractTruncatesOnRuneBoundary(t *testing.T) {
	// Two-byte runes with an odd byte budget: a byte-offset cut would
	// leave a partial rune at the end.
	content := strings.Repeat("é", 200)
	storage := &storageFake{objects: map[string][]byte{"user-1/doc.txt": []byte(content)}}
	e := New(storage, 101, 50, nil)

	got, err := e.Extract(context.Background(), doc("user-1/doc.txt", "doc.txt", "text/plain"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is not valid UTF-8: %q", got)
	}
	if len(got) != 100 {
		t.Fatalf("len = %d, want 100", len(got))
	}
}

func TestExtractGarbledPDFFallsBackToPrintableRuns(t *testing.T) {
	// Not a parseable PDF, but it carries readable runs between binary noise.
	raw := append([]byte("%PDF-1.4\x00\x01\x02"), []byte("Photosynthesis converts light energy into chemical energy stored in glucose molecules.")...)
	raw = append(raw, 0x00, 0x01)
	storage := &storageFake{objects: map[string][]byte{"user-1/doc.pdf": raw}}
	e := New(storage, 0, 10, nil)

	got, err := e.Extract(context.Background(), doc("user-1/doc.pdf", "doc.pdf", "application/pdf"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(got, "Photosynthesis converts light energy") {
		t.Fatalf("fallback text = %q", got)
	}
}

func TestPickStrategy(t *testing.T) {
	cases := []struct {
		mediaType string
		filename  string
		want      strategy
	}{
		{"application/pdf", "a.bin", strategyPDF},
		{"", "slides.pdf", strategyPDF},
		{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "grades", strategySpreadsheet},
		{"", "grades.xlsx", strategySpreadsheet},
		{"text/markdown", "readme", strategyPlainText},
		{"", "notes.md", strategyPlainText},
		{"application/json", "data", strategyPlainText},
		{"application/octet-stream", "mystery.bin", strategyBinaryScan},
	}
	for _, tc := range cases {
		if got := pickStrategy(tc.mediaType, tc.filename); got != tc.want {
			t.Fatalf("pickStrategy(%q, %q) = %d, want %d", tc.mediaType, tc.filename, got, tc.want)
		}
	}
}

func TestPrintableRuns(t *testing.T) {
	raw := []byte("\x00\x01abc\x02longer readable run here\x03x\x04")
	got := printableRuns(raw)

	if strings.Contains(got, "abc") {
		t.Fatalf("short run kept: %q", got)
	}
	if !strings.Contains(got, "longer readable run here") {
		t.Fatalf("long run lost: %q", got)
	}
	if strings.Contains(got, "  ") {
		t.Fatalf("double spacing in %q", got)
	}
}

func TestPlainTextRepairsInvalidUTF8(t *testing.T) {
	got := plainText([]byte{'o', 'k', 0xff, '!'})
	if !strings.Contains(got, "ok") || !strings.Contains(got, "!") {
		t.Fatalf("repaired text = %q", got)
	}
}
