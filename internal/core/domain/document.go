package domain

import "time"

type DocumentStatus string

const (
	StatusUploading      DocumentStatus = "uploading"
	StatusExtractingText DocumentStatus = "extracting_text"
	StatusChunking       DocumentStatus = "chunking"
	StatusStoringChunks  DocumentStatus = "storing_chunks"
	StatusCompleted      DocumentStatus = "completed"
	StatusError          DocumentStatus = "error"
)

// statusRank orders the pipeline stages. Terminal states share the
// highest rank so neither can be left once entered.
var statusRank = map[DocumentStatus]int{
	StatusUploading:      0,
	StatusExtractingText: 1,
	StatusChunking:       2,
	StatusStoringChunks:  3,
	StatusCompleted:      4,
	StatusError:          4,
}

// CanTransition reports whether moving between the two statuses keeps
// the state machine monotonic. Transition to error is allowed from any
// non-terminal stage; no state is ever revisited.
func CanTransition(from, to DocumentStatus) bool {
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	if from.Terminal() {
		return false
	}
	if to == StatusError {
		return true
	}
	return toRank > fromRank
}

func (s DocumentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

type Document struct {
	ID          string         `json:"id"`
	OwnerID     string         `json:"owner_id"`
	Title       string         `json:"title"`
	Filename    string         `json:"filename"`
	StoragePath string         `json:"storage_path"`
	MediaType   string         `json:"media_type"`
	SizeBytes   int64          `json:"size_bytes"`
	Status      DocumentStatus `json:"status"`
	TotalChunks int            `json:"total_chunks"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Chunk is one bounded fragment of a document's extracted text. OwnerID
// is denormalized from the document so retrieval can filter without a
// join against documents.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	OwnerID    string    `json:"owner_id"`
	Content    string    `json:"content"`
	Seq        int       `json:"seq"`
	Page       int       `json:"page"`
	Embedding  []float32 `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}
