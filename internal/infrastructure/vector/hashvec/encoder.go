// Package hashvec builds deterministic fixed-length feature vectors from
// chunk text alone. It is a structural fallback for a learned embedding:
// always available, no network, bit-identical output for identical input.
package hashvec

import (
	"context"
	"log/slog"
	"math"
	"regexp"
	"strings"
)

const DefaultDim = 384

var nonWord = regexp.MustCompile(`\W+`)

type Encoder struct {
	dim int
}

func NewEncoder(dim int) *Encoder {
	if dim <= 0 {
		dim = DefaultDim
	}
	return &Encoder{dim: dim}
}

func (e *Encoder) Dim() int { return e.dim }

// Encode distributes each token's codepoints into vector positions with a
// rolling hash of (token index, char index, char code), weighted inversely
// by token position so leading terms dominate, then L2-normalizes. A zero
// accumulation stays the zero vector.
func (e *Encoder) Encode(text string) []float32 {
	vec := make([]float64, e.dim)

	tokenIdx := 0
	for _, token := range nonWord.Split(strings.ToLower(text), -1) {
		if len(token) < 3 {
			continue
		}
		weight := 1.0 / float64(1+tokenIdx)
		for charIdx, r := range token {
			h := rollingHash(tokenIdx, charIdx, r)
			vec[h%uint32(e.dim)] += weight * float64(r%31+1)
		}
		tokenIdx++
	}

	var sumSq float64
	for _, v := range vec {
		sumSq += v * v
	}
	out := make([]float32, e.dim)
	if sumSq == 0 {
		return out
	}
	norm := math.Sqrt(sumSq)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}

func rollingHash(tokenIdx, charIdx int, char rune) uint32 {
	h := uint32(2166136261)
	for _, part := range [3]uint32{uint32(tokenIdx), uint32(charIdx), uint32(char)} {
		h ^= part
		h *= 16777619
	}
	return h
}

// KeywordExtractor is the optional enrichment collaborator.
type KeywordExtractor interface {
	Keywords(ctx context.Context, text string) (string, error)
}

// EnrichingEncoder prepends an externally produced keyword summary to the
// text before hashing, biasing the vector toward salient terms. Any
// enrichment failure falls back silently to the raw text.
type EnrichingEncoder struct {
	encoder  *Encoder
	keywords KeywordExtractor
	logger   *slog.Logger
}

func NewEnrichingEncoder(encoder *Encoder, keywords KeywordExtractor, logger *slog.Logger) *EnrichingEncoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrichingEncoder{
		encoder:  encoder,
		keywords: keywords,
		logger:   logger,
	}
}

func (e *EnrichingEncoder) Dim() int { return e.encoder.Dim() }

func (e *EnrichingEncoder) Vectorize(ctx context.Context, text string) []float32 {
	if e.keywords == nil {
		return e.encoder.Encode(text)
	}
	keywords, err := e.keywords.Keywords(ctx, text)
	if err != nil {
		e.logger.Debug("keyword_enrichment_fallback", "error", err)
		return e.encoder.Encode(text)
	}
	keywords = strings.TrimSpace(keywords)
	if keywords == "" {
		return e.encoder.Encode(text)
	}
	return e.encoder.Encode(keywords + "\n" + text)
}
