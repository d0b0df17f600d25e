package ports

import (
	"context"
	"io"

	"github.com/studyvault/studyvault/internal/core/domain"
)

// UploadRequest is the raw-content ingestion shape: the caller supplies
// the file bytes directly.
type UploadRequest struct {
	Filename  string
	MediaType string
	Title     string
	Body      io.Reader
}

// AttachRequest references content already placed in object storage
// under the caller's own namespace prefix.
type AttachRequest struct {
	StoragePath string
	Filename    string
	MediaType   string
	Title       string
	SizeBytes   int64
}

// DocumentIngestor is the inbound contract for the synchronous phase of
// ingestion. Both shapes return as soon as the document record exists.
type DocumentIngestor interface {
	Upload(ctx context.Context, ownerID string, req UploadRequest) (*domain.Document, error)
	Attach(ctx context.Context, ownerID string, req AttachRequest) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// QuestionAnswerer is the inbound contract for retrieval + answering.
type QuestionAnswerer interface {
	Ask(ctx context.Context, ownerID, question string, limit int) (*domain.Answer, error)
}

// DocumentReader is the inbound read model for status polling and listing.
type DocumentReader interface {
	GetByID(ctx context.Context, ownerID, id string) (*domain.Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Document, error)
}

// DocumentRemover deletes a document and cascades to its chunks.
type DocumentRemover interface {
	Remove(ctx context.Context, ownerID, id string) error
}
