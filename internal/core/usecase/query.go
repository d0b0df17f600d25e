package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/studyvault/studyvault/internal/core/domain"
	"github.com/studyvault/studyvault/internal/core/ports"
)

// QueryUseCase answers a question from the owner's completed chunks:
// score, take the top-K, ground the generator in what survived. It never
// mutates document or chunk state and may run while other documents are
// still ingesting.
type QueryUseCase struct {
	chunks    ports.ChunkRepository
	generator ports.AnswerGenerator
	opts      ScoreOptions
}

func NewQueryUseCase(chunks ports.ChunkRepository, generator ports.AnswerGenerator, opts ScoreOptions) *QueryUseCase {
	return &QueryUseCase{
		chunks:    chunks,
		generator: generator,
		opts:      opts.normalize(),
	}
}

func (uc *QueryUseCase) Ask(ctx context.Context, ownerID, question string, limit int) (*domain.Answer, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "answer question", errors.New("missing owner"))
	}
	if strings.TrimSpace(question) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer question", errors.New("question is required"))
	}

	opts := uc.opts
	if limit > 0 {
		opts.TopK = limit
	}

	corpus, err := uc.chunks.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load owner chunks: %w", err)
	}

	sources := scoreChunks(question, corpus, opts)

	answerText, err := uc.generator.GenerateAnswer(ctx, question, sources)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Text:    answerText,
		Sources: sources,
	}, nil
}
