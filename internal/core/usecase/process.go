package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/studyvault/studyvault/internal/core/domain"
	"github.com/studyvault/studyvault/internal/core/ports"
)

// ProcessConfig bounds worst-case resource use of a single pipeline run.
type ProcessConfig struct {
	MaxChunks     int
	BatchSize     int
	ChunksPerPage int
}

func (c ProcessConfig) normalize() ProcessConfig {
	out := c
	if out.MaxChunks <= 0 {
		out.MaxChunks = 500
	}
	if out.BatchSize <= 0 {
		out.BatchSize = 50
	}
	if out.ChunksPerPage <= 0 {
		out.ChunksPerPage = 3
	}
	return out
}

// ProcessUseCase runs the asynchronous stages of ingestion for one
// document, advancing the persisted status at each stage boundary. Any
// stage error terminates the run at status=error; a failure while storing
// chunks additionally sweeps out the batches already written so a
// document is never half-queryable.
type ProcessUseCase struct {
	repo       ports.DocumentRepository
	chunks     ports.ChunkRepository
	extractor  ports.TextExtractor
	chunker    ports.Chunker
	vectorizer ports.Vectorizer
	cfg        ProcessConfig
}

func NewProcessUseCase(
	repo ports.DocumentRepository,
	chunks ports.ChunkRepository,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	vectorizer ports.Vectorizer,
	cfg ProcessConfig,
) *ProcessUseCase {
	return &ProcessUseCase{
		repo:       repo,
		chunks:     chunks,
		extractor:  extractor,
		chunker:    chunker,
		vectorizer: vectorizer,
		cfg:        cfg.normalize(),
	}
}

func (uc *ProcessUseCase) ProcessByID(ctx context.Context, documentID string) error {
	stored, err := uc.runPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.markError(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark error status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.Complete(ctx, documentID, stored); err != nil {
		return fmt.Errorf("set status=completed: %w", err)
	}
	return nil
}

func (uc *ProcessUseCase) runPipeline(ctx context.Context, documentID string) (int, error) {
	doc, err := uc.loadDocument(ctx, documentID)
	if err != nil {
		return 0, err
	}

	text, err := uc.extractText(ctx, doc)
	if err != nil {
		return 0, err
	}

	chunks, err := uc.chunkText(ctx, doc, text)
	if err != nil {
		return 0, err
	}

	return uc.storeChunks(ctx, doc, chunks)
}

func (uc *ProcessUseCase) loadDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, "", documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return doc, nil
}

func (uc *ProcessUseCase) extractText(ctx context.Context, doc *domain.Document) (string, error) {
	if err := uc.advance(ctx, doc.ID, domain.StatusExtractingText); err != nil {
		return "", err
	}

	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	if text == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}
	return text, nil
}

func (uc *ProcessUseCase) chunkText(ctx context.Context, doc *domain.Document, text string) ([]string, error) {
	if err := uc.advance(ctx, doc.ID, domain.StatusChunking); err != nil {
		return nil, err
	}

	chunks := uc.chunker.Split(text)
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("chunking produced zero chunks"))
	}
	// Bound pathological inputs: keep the first MaxChunks in original
	// order and record the achieved count truthfully.
	if len(chunks) > uc.cfg.MaxChunks {
		chunks = chunks[:uc.cfg.MaxChunks]
	}
	return chunks, nil
}

func (uc *ProcessUseCase) storeChunks(ctx context.Context, doc *domain.Document, texts []string) (int, error) {
	if err := uc.advance(ctx, doc.ID, domain.StatusStoringChunks); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	records := make([]domain.Chunk, 0, len(texts))
	for seq, text := range texts {
		records = append(records, domain.Chunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			OwnerID:    doc.OwnerID,
			Content:    text,
			Seq:        seq,
			Page:       seq/uc.cfg.ChunksPerPage + 1,
			Embedding:  uc.vectorizer.Vectorize(ctx, text),
			CreatedAt:  now,
		})
	}

	for start := 0; start < len(records); start += uc.cfg.BatchSize {
		end := start + uc.cfg.BatchSize
		if end > len(records) {
			end = len(records)
		}
		if err := uc.chunks.InsertBatch(ctx, records[start:end]); err != nil {
			// Written batches must not outlive the failed run.
			if cleanErr := uc.chunks.DeleteByDocument(ctx, doc.ID); cleanErr != nil {
				return 0, fmt.Errorf("insert chunk batch: %w; cleanup: %v", err, cleanErr)
			}
			return 0, fmt.Errorf("insert chunk batch: %w", err)
		}
	}

	return len(records), nil
}

func (uc *ProcessUseCase) advance(ctx context.Context, documentID string, status domain.DocumentStatus) error {
	if err := uc.repo.UpdateStatus(ctx, documentID, status, ""); err != nil {
		return fmt.Errorf("set status=%s: %w", status, err)
	}
	return nil
}

func (uc *ProcessUseCase) markError(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.repo.UpdateStatus(ctx, documentID, domain.StatusError, processErr.Error())
}
