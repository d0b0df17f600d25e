// Package extractive is the no-network stand-in for the hosted answer
// generator: it stitches the retrieved excerpts into a readable reply so
// the query surface keeps working without an API key.
package extractive

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/studyvault/studyvault/internal/core/domain"
)

const maxExcerptBytes = 300

type Generator struct{}

func New() *Generator {
	return &Generator{}
}

func (g *Generator) GenerateAnswer(_ context.Context, question string, sources []domain.ScoredChunk) (string, error) {
	if len(sources) == 0 {
		return "No relevant material was found in your documents for this question.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d relevant passage(s) for %q:\n\n", len(sources), question)
	for i, src := range sources {
		excerpt := src.Content
		if len(excerpt) > maxExcerptBytes {
			cut := maxExcerptBytes
			for cut > 0 && !utf8.RuneStart(excerpt[cut]) {
				cut--
			}
			excerpt = excerpt[:cut] + "…"
		}
		fmt.Fprintf(&b, "%d. [%s, %s] %s\n", i+1, src.DocumentTitle, src.PageLabel, excerpt)
	}
	return b.String(), nil
}
