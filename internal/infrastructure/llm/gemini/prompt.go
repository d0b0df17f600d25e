package gemini

import (
	"fmt"
	"strings"

	"github.com/studyvault/studyvault/internal/core/domain"
)

func buildKeywordPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Extract the 5-10 most important keywords and key phrases from the study material below. ")
	b.WriteString("Reply with a single comma-separated list, nothing else.\n\n")
	b.WriteString(text)
	return b.String()
}

func buildAnswerPrompt(question string, sources []domain.ScoredChunk) string {
	var b strings.Builder
	b.WriteString("You are a study assistant. Answer the question using only the excerpts below. ")
	b.WriteString("Cite the source title and page when you use an excerpt. ")
	b.WriteString("If the excerpts do not contain the answer, say so instead of guessing.\n\n")

	if len(sources) == 0 {
		b.WriteString("No relevant excerpts were found in the user's material.\n")
	}
	for i, src := range sources {
		fmt.Fprintf(&b, "Excerpt %d (%s, %s):\n%s\n\n", i+1, src.DocumentTitle, src.PageLabel, src.Content)
	}

	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}
