package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studyvault/studyvault/internal/core/domain"
	"github.com/studyvault/studyvault/internal/core/ports"
)

// IngestUseCase is the synchronous half of the ingestion pipeline: it
// validates input, persists the document record in its initial state and
// hands the id to the queue. Everything after that happens in the worker.
type IngestUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestUseCase {
	return &IngestUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

func (uc *IngestUseCase) Upload(ctx context.Context, ownerID string, req ports.UploadRequest) (*domain.Document, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "upload document", errors.New("missing owner"))
	}
	if strings.TrimSpace(req.Filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", errors.New("filename is required"))
	}
	if req.Body == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", errors.New("file content is required"))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s/%s_%s", ownerID, id, sanitizeFilename(req.Filename))

	counting := &countingReader{inner: req.Body}
	if err := uc.storage.Save(ctx, storageKey, counting); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc := newDocument(id, ownerID, storageKey, req.Filename, req.MediaType, req.Title, counting.n)
	return uc.createAndQueue(ctx, doc)
}

func (uc *IngestUseCase) Attach(ctx context.Context, ownerID string, req ports.AttachRequest) (*domain.Document, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "attach document", errors.New("missing owner"))
	}
	if strings.TrimSpace(req.Filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "attach document", errors.New("filename is required"))
	}
	path := strings.TrimSpace(req.StoragePath)
	if path == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "attach document", errors.New("storage_path is required"))
	}
	// A pre-placed object must live under the caller's own prefix.
	if !strings.HasPrefix(path, ownerID+"/") || strings.Contains(path, "..") {
		return nil, domain.WrapError(domain.ErrForbiddenPath, "attach document", fmt.Errorf("path %q", path))
	}

	doc := newDocument(uuid.NewString(), ownerID, path, req.Filename, req.MediaType, req.Title, req.SizeBytes)
	return uc.createAndQueue(ctx, doc)
}

func (uc *IngestUseCase) createAndQueue(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}

	if err := uc.queue.PublishDocumentQueued(ctx, doc.ID); err != nil {
		// The record exists but will never be picked up; close it out.
		_ = uc.repo.UpdateStatus(ctx, doc.ID, domain.StatusError, "queue publish failed")
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}

	return doc, nil
}

func newDocument(id, ownerID, storagePath, filename, mediaType, title string, sizeBytes int64) *domain.Document {
	if strings.TrimSpace(mediaType) == "" {
		mediaType = "application/octet-stream"
	}
	if strings.TrimSpace(title) == "" {
		title = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	now := time.Now().UTC()
	return &domain.Document{
		ID:          id,
		OwnerID:     ownerID,
		Title:       title,
		Filename:    filename,
		StoragePath: storagePath,
		MediaType:   mediaType,
		SizeBytes:   sizeBytes,
		Status:      domain.StatusUploading,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}

type countingReader struct {
	inner io.Reader
	n     int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.inner.Read(p)
	c.n += int64(n)
	return n, err
}
