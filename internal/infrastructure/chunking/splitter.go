package chunking

import (
	"regexp"
	"strings"
)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Splitter produces bounded, paragraph-aligned chunks. Each paragraph
// closes the current chunk as soon as it can stand alone (length at
// least MinLen); only fragments below MinLen pack forward into the next
// paragraph, up to MaxLen. A single paragraph longer than MaxLen is
// split at word boundaries instead. Chunks still shorter than MinLen at
// the end are dropped as noise. Splitting is stateless: identical input
// yields an identical sequence.
type Splitter struct {
	MaxLen int
	MinLen int
}

func NewSplitter(maxLen, minLen int) *Splitter {
	if maxLen <= 0 {
		maxLen = 1000
	}
	if minLen < 0 {
		minLen = 0
	}
	if minLen >= maxLen {
		minLen = 0
	}
	return &Splitter{
		MaxLen: maxLen,
		MinLen: minLen,
	}
}

func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var out []string
	var buf strings.Builder

	flush := func() {
		chunk := strings.TrimSpace(buf.String())
		buf.Reset()
		if len(chunk) >= s.MinLen && chunk != "" {
			out = append(out, chunk)
		}
	}

	for _, para := range paragraphBreak.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if len(para) > s.MaxLen {
			flush()
			for _, piece := range s.splitWords(para) {
				if len(piece) >= s.MinLen {
					out = append(out, piece)
				}
			}
			continue
		}

		// A buffered chunk that can stand alone closes at the
		// paragraph boundary; +2 for the separator joined into the
		// buffer when a fragment packs forward.
		if buf.Len() > 0 && (buf.Len() >= s.MinLen || buf.Len()+2+len(para) > s.MaxLen) {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(para)
	}
	flush()

	return out
}

// splitWords greedy-packs words so no piece exceeds MaxLen by more than
// a single word's length. A word longer than MaxLen becomes its own piece.
func (s *Splitter) splitWords(para string) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return nil
	}

	var pieces []string
	var buf strings.Builder
	for _, word := range words {
		if buf.Len() > 0 && buf.Len()+1+len(word) > s.MaxLen {
			pieces = append(pieces, buf.String())
			buf.Reset()
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(word)
	}
	if buf.Len() > 0 {
		pieces = append(pieces, buf.String())
	}
	return pieces
}
