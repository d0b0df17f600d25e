package usecase

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/studyvault/studyvault/internal/core/domain"
)

// ScoreOptions are empirical tuning defaults, not invariants; every knob
// is overridable through configuration.
type ScoreOptions struct {
	TopK               int
	PhraseBonus        float64
	NGramWeight        float64
	TermWeight         float64
	TermFreqCap        int
	ProximityBonus     float64
	ProximityThreshold float64
}

func (o ScoreOptions) normalize() ScoreOptions {
	out := o
	if out.TopK <= 0 {
		out.TopK = 5
	}
	if out.PhraseBonus <= 0 {
		out.PhraseBonus = 10.0
	}
	if out.NGramWeight <= 0 {
		out.NGramWeight = 1.5
	}
	if out.TermWeight <= 0 {
		out.TermWeight = 1.0
	}
	if out.TermFreqCap <= 0 {
		out.TermFreqCap = 5
	}
	if out.ProximityBonus <= 0 {
		out.ProximityBonus = 2.0
	}
	if out.ProximityThreshold <= 0 {
		out.ProximityThreshold = 120
	}
	return out
}

const minTermWeight = 0.1

// scoreChunks ranks a user's chunks against a free-text query and returns
// the top-K with a positive score. Signals are additive: an exact-phrase
// bonus, n-gram overlap for n in {2,3}, capped whole-word term frequency
// weighted by corpus rarity, and a proximity bonus when query terms
// co-occur tightly. Ties resolve to the earlier chunk for determinism.
func scoreChunks(query string, chunks []domain.OwnedChunk, opts ScoreOptions) []domain.ScoredChunk {
	opts = opts.normalize()

	queryLower := strings.ToLower(strings.TrimSpace(query))
	queryTokens := contentTokens(queryLower)
	if queryLower == "" || len(chunks) == 0 {
		return nil
	}

	idf := termRarity(queryTokens, chunks)

	scored := make([]domain.ScoredChunk, 0, opts.TopK)
	for _, chunk := range chunks {
		score := scoreOne(queryLower, queryTokens, idf, chunk.Content, opts)
		if score <= 0 {
			continue
		}
		scored = append(scored, domain.ScoredChunk{
			Content:       chunk.Content,
			DocumentID:    chunk.DocumentID,
			DocumentTitle: chunk.DocumentTitle,
			Seq:           chunk.Seq,
			PageLabel:     fmt.Sprintf("p. %d", chunk.Page),
			Score:         score,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].DocumentID != scored[j].DocumentID {
			return scored[i].DocumentID < scored[j].DocumentID
		}
		return scored[i].Seq < scored[j].Seq
	})

	if len(scored) > opts.TopK {
		scored = scored[:opts.TopK]
	}
	return scored
}

func scoreOne(queryLower string, queryTokens []string, idf map[string]float64, content string, opts ScoreOptions) float64 {
	contentLower := strings.ToLower(content)
	positions := wordPositions(contentLower)

	var score float64

	// Exact phrase: the whole query appearing verbatim dominates
	// scattered word matches.
	if strings.Contains(contentLower, queryLower) {
		score += opts.PhraseBonus
	}

	// Contiguous query n-grams found verbatim; longer phrases weigh more.
	for n := 2; n <= 3; n++ {
		for i := 0; i+n <= len(queryTokens); i++ {
			gram := strings.Join(queryTokens[i:i+n], " ")
			if strings.Contains(contentLower, gram) {
				score += opts.NGramWeight * float64(n)
			}
		}
	}

	// Capped whole-word term frequency weighted by rarity. A token
	// repeated in the query counts once; only distinct terms feed the
	// proximity pairs below.
	firstSeen := make([]int, 0, len(queryTokens))
	counted := make(map[string]bool, len(queryTokens))
	for _, token := range queryTokens {
		if counted[token] {
			continue
		}
		counted[token] = true
		occ := positions[token]
		if len(occ) == 0 {
			continue
		}
		count := len(occ)
		if count > opts.TermFreqCap {
			count = opts.TermFreqCap
		}
		score += opts.TermWeight * float64(count) * idf[token]
		firstSeen = append(firstSeen, occ[0])
	}

	// Proximity: reward chunks where distinct query terms sit close
	// together rather than merely co-existing.
	if len(firstSeen) >= 2 {
		var total, pairs float64
		for i := 0; i < len(firstSeen); i++ {
			for j := i + 1; j < len(firstSeen); j++ {
				total += math.Abs(float64(firstSeen[i] - firstSeen[j]))
				pairs++
			}
		}
		if total/pairs < opts.ProximityThreshold {
			score += opts.ProximityBonus
		}
	}

	return score
}

// termRarity computes an inverse-document-frequency-style weight per
// query token over the owner's whole chunk set, floored so common terms
// still contribute a little.
func termRarity(queryTokens []string, chunks []domain.OwnedChunk) map[string]float64 {
	containing := make(map[string]int, len(queryTokens))
	for _, chunk := range chunks {
		positions := wordPositions(strings.ToLower(chunk.Content))
		for _, token := range queryTokens {
			if len(positions[token]) > 0 {
				containing[token]++
			}
		}
	}

	total := float64(len(chunks))
	out := make(map[string]float64, len(queryTokens))
	for _, token := range queryTokens {
		weight := math.Log((total + 1) / (float64(containing[token]) + 1))
		if weight < minTermWeight {
			weight = minTermWeight
		}
		out[token] = weight
	}
	return out
}

// contentTokens returns the query's non-stopword word tokens in order,
// duplicates preserved so n-grams stay faithful to the original phrasing.
func contentTokens(s string) []string {
	var out []string
	for _, token := range tokenizeWords(s) {
		if !isStopword(token) {
			out = append(out, token)
		}
	}
	return out
}

// wordPositions maps each word token of s to the byte offsets where it
// occurs, whole words only.
func wordPositions(s string) map[string][]int {
	out := make(map[string][]int)
	start := -1
	for i, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out[s[start:i]] = append(out[s[start:i]], start)
			start = -1
		}
	}
	if start >= 0 {
		out[s[start:]] = append(out[s[start:]], start)
	}
	return out
}

func tokenizeWords(s string) []string {
	var out []string
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}
