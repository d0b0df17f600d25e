package domain

// OwnedChunk joins a stored chunk with its document's display title, the
// shape the retrieval scorer works over. Title may be empty when the
// parent document row is gone mid-read; callers treat that as untitled
// rather than an error.
type OwnedChunk struct {
	Chunk
	DocumentTitle string `json:"document_title"`
}

// ScoredChunk is one retrieval result with citation metadata.
type ScoredChunk struct {
	Content       string  `json:"chunk_text"`
	DocumentID    string  `json:"document_id"`
	DocumentTitle string  `json:"document_title"`
	Seq           int     `json:"seq"`
	PageLabel     string  `json:"page_label"`
	Score         float64 `json:"score"`
}

type Answer struct {
	Text    string        `json:"answer"`
	Sources []ScoredChunk `json:"sources"`
}
