package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studyvault/studyvault/internal/core/ports"
)

// RemoveUseCase is the user-initiated deletion path: chunks first so a
// half-deleted document can never serve retrieval results, then the
// record, then a best-effort sweep of the stored blob.
type RemoveUseCase struct {
	repo    ports.DocumentRepository
	chunks  ports.ChunkRepository
	storage ports.ObjectStorage
	logger  *slog.Logger
}

func NewRemoveUseCase(
	repo ports.DocumentRepository,
	chunks ports.ChunkRepository,
	storage ports.ObjectStorage,
	logger *slog.Logger,
) *RemoveUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoveUseCase{
		repo:    repo,
		chunks:  chunks,
		storage: storage,
		logger:  logger,
	}
}

func (uc *RemoveUseCase) Remove(ctx context.Context, ownerID, id string) error {
	doc, err := uc.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	if err := uc.chunks.DeleteByDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document chunks: %w", err)
	}
	if err := uc.repo.Delete(ctx, ownerID, doc.ID); err != nil {
		return fmt.Errorf("delete document record: %w", err)
	}

	if err := uc.storage.Delete(ctx, doc.StoragePath); err != nil {
		uc.logger.Warn("blob_delete_failed", "document_id", doc.ID, "error", err)
	}
	return nil
}
