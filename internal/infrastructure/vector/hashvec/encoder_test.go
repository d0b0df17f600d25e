package hashvec

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestEncodeDeterministic(t *testing.T) {
	enc := NewEncoder(DefaultDim)
	text := "Photosynthesis converts light energy into chemical energy."

	first := enc.Encode(text)
	for run := 0; run < 3; run++ {
		again := enc.Encode(text)
		for i := range again {
			if again[i] != first[i] {
				t.Fatalf("run %d: component %d differs: %v vs %v", run, i, again[i], first[i])
			}
		}
	}
}

func TestEncodeDimAndNorm(t *testing.T) {
	enc := NewEncoder(128)
	vec := enc.Encode("mitochondria produce adenosine triphosphate")

	if len(vec) != 128 {
		t.Fatalf("dim = %d", len(vec))
	}
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(sumSq)-1.0) > 1e-5 {
		t.Fatalf("norm = %f, want 1", math.Sqrt(sumSq))
	}
}

func TestEncodeShortTokensYieldZeroVector(t *testing.T) {
	enc := NewEncoder(64)
	vec := enc.Encode("a an to it of")

	for i, v := range vec {
		if v != 0 {
			t.Fatalf("component %d = %v, want zero vector", i, v)
		}
	}
}

func TestEncodeDistinguishesTexts(t *testing.T) {
	enc := NewEncoder(DefaultDim)
	a := enc.Encode("glucose metabolism in the liver")
	b := enc.Encode("roman aqueduct engineering")

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different texts produced identical vectors")
	}
}

func TestNewEncoderDefaultsDim(t *testing.T) {
	if enc := NewEncoder(0); enc.Dim() != DefaultDim {
		t.Fatalf("dim = %d", enc.Dim())
	}
}

type keywordsFake struct {
	summary string
	err     error
	calls   int
}

func (f *keywordsFake) Keywords(context.Context, string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

func TestEnrichingEncoderChangesVector(t *testing.T) {
	enc := NewEncoder(DefaultDim)
	plain := NewEnrichingEncoder(enc, nil, nil)
	enriched := NewEnrichingEncoder(enc, &keywordsFake{summary: "photosynthesis chlorophyll"}, nil)

	text := "The process takes place in the leaves."
	a := plain.Vectorize(context.Background(), text)
	b := enriched.Vectorize(context.Background(), text)

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("enrichment had no effect on the vector")
	}
}

func TestEnrichingEncoderFallsBackSilently(t *testing.T) {
	enc := NewEncoder(DefaultDim)
	failing := &keywordsFake{err: errors.New("llm unreachable")}
	enriched := NewEnrichingEncoder(enc, failing, nil)

	text := "Cell walls give plants structure."
	got := enriched.Vectorize(context.Background(), text)
	want := enc.Encode(text)

	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("fallback vector differs at %d", i)
		}
	}
	if failing.calls != 1 {
		t.Fatalf("extractor called %d times", failing.calls)
	}
}

func TestEnrichingEncoderBlankSummaryFallsBack(t *testing.T) {
	enc := NewEncoder(DefaultDim)
	enriched := NewEnrichingEncoder(enc, &keywordsFake{summary: "   "}, nil)

	text := "Enzymes lower activation energy."
	got := enriched.Vectorize(context.Background(), text)
	want := enc.Encode(text)

	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("blank summary must fall back to raw text")
		}
	}
}
