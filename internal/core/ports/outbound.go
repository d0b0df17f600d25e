package ports

import (
	"context"
	"io"

	"github.com/studyvault/studyvault/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	// GetByID scopes the read to ownerID; an empty ownerID skips the
	// owner filter (worker-side reads).
	GetByID(ctx context.Context, ownerID, id string) (*domain.Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Document, error)
	// UpdateStatus advances the persisted state machine. Implementations
	// reject transitions domain.CanTransition forbids.
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	// Complete sets total_chunks and the completed status in one write.
	Complete(ctx context.Context, id string, totalChunks int) error
	Delete(ctx context.Context, ownerID, id string) error
}

// ChunkRepository persists chunks in batches and reads them for scoring.
type ChunkRepository interface {
	InsertBatch(ctx context.Context, chunks []domain.Chunk) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.OwnedChunk, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}

// ObjectStorage stores source documents under owner-prefixed keys.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// MessageQueue decouples upload acceptance from background processing.
type MessageQueue interface {
	PublishDocumentQueued(ctx context.Context, documentID string) error
	SubscribeDocumentQueued(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts best-effort plain text from a stored document.
// Parse failures degrade to a placeholder; only storage access errors
// are returned.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// Chunker splits extracted text into bounded fragments.
type Chunker interface {
	Split(text string) []string
}

// Vectorizer builds the deterministic feature vector for a chunk.
type Vectorizer interface {
	Vectorize(ctx context.Context, text string) []float32
}

// KeywordExtractor is the optional enrichment collaborator. Failures are
// absorbed by callers, never propagated.
type KeywordExtractor interface {
	Keywords(ctx context.Context, text string) (string, error)
}

// AnswerGenerator creates the final user-facing answer from scored chunks.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, sources []domain.ScoredChunk) (string, error)
}
