package extractive

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/studyvault/studyvault/internal/core/domain"
)

func TestGenerateAnswerWithoutSources(t *testing.T) {
	g := New()

	got, err := g.GenerateAnswer(context.Background(), "what is osmosis", nil)
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}
	if !strings.Contains(got, "No relevant material") {
		t.Fatalf("answer = %q", got)
	}
}

func TestGenerateAnswerCitesSources(t *testing.T) {
	g := New()

	sources := []domain.ScoredChunk{
		{Content: "Osmosis is the diffusion of water across a membrane.", DocumentTitle: "Bio Notes", PageLabel: "p. 2", Score: 8.1},
		{Content: strings.Repeat("long passage ", 40), DocumentTitle: "Lecture 3", PageLabel: "p. 7", Score: 3.4},
	}
	got, err := g.GenerateAnswer(context.Background(), "what is osmosis", sources)
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}
	if !strings.Contains(got, "[Bio Notes, p. 2]") || !strings.Contains(got, "[Lecture 3, p. 7]") {
		t.Fatalf("citations missing: %q", got)
	}
	if !strings.Contains(got, "…") {
		t.Fatalf("long excerpt not truncated: %q", got)
	}
}

func TestGenerateAnswerTruncatesOnRuneBoundary(t *testing.T) {
	g := New()

	// The leading ASCII byte pushes every three-byte rune off the byte
	// budget boundary.
	sources := []domain.ScoredChunk{
		{Content: "a" + strings.Repeat("語", 120), DocumentTitle: "Kanji Notes", PageLabel: "p. 1", Score: 2.0},
	}
	got, err := g.GenerateAnswer(context.Background(), "vocabulary", sources)
	if err != nil {
		t.Fatalf("GenerateAnswer() error = %v", err)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("answer is not valid UTF-8: %q", got)
	}
	if !strings.Contains(got, "…") {
		t.Fatalf("oversized excerpt not truncated: %q", got)
	}
}
