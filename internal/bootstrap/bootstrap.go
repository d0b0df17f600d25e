package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studyvault/studyvault/internal/config"
	"github.com/studyvault/studyvault/internal/core/ports"
	"github.com/studyvault/studyvault/internal/core/usecase"
	"github.com/studyvault/studyvault/internal/infrastructure/chunking"
	"github.com/studyvault/studyvault/internal/infrastructure/extractor"
	"github.com/studyvault/studyvault/internal/infrastructure/llm/extractive"
	"github.com/studyvault/studyvault/internal/infrastructure/llm/gemini"
	"github.com/studyvault/studyvault/internal/infrastructure/queue/nats"
	"github.com/studyvault/studyvault/internal/infrastructure/repository/postgres"
	"github.com/studyvault/studyvault/internal/infrastructure/resilience"
	"github.com/studyvault/studyvault/internal/infrastructure/storage/localfs"
	"github.com/studyvault/studyvault/internal/infrastructure/storage/s3"
	"github.com/studyvault/studyvault/internal/infrastructure/vector/hashvec"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Repo      ports.DocumentRepository
	Chunks    ports.ChunkRepository
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	QueryUC   ports.QuestionAnswerer
	RemoveUC  ports.DocumentRemover

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx, cfg.VectorDim); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	chunkRepo := postgres.NewChunkRepository(db)

	storage, err := newObjectStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.QueuePolicy())
	executor.UsePolicy("gemini.answer", resilience.ModelPolicy())
	executor.UsePolicy("gemini.keywords", resilience.ModelPolicy())
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	var keywords hashvec.KeywordExtractor
	var generator ports.AnswerGenerator = extractive.New()
	var geminiClient *gemini.Client
	if cfg.GeminiEnabled {
		geminiClient, err = gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, executor)
		if err != nil {
			return nil, fmt.Errorf("init gemini: %w", err)
		}
		keywords = geminiClient
		generator = geminiClient
	}

	encoder := hashvec.NewEncoder(cfg.VectorDim)
	vectorizer := hashvec.NewEnrichingEncoder(encoder, keywords, logger)
	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.MinChunkLen)
	textExtractor := extractor.New(storage, cfg.MaxExtractChars, cfg.MinExtractChars, logger)

	ingestUC := usecase.NewIngestUseCase(repo, storage, queue)
	processUC := usecase.NewProcessUseCase(repo, chunkRepo, textExtractor, chunker, vectorizer, usecase.ProcessConfig{
		MaxChunks:     cfg.MaxChunks,
		BatchSize:     cfg.ChunkBatchSize,
		ChunksPerPage: cfg.ChunksPerPage,
	})
	queryUC := usecase.NewQueryUseCase(chunkRepo, generator, usecase.ScoreOptions{
		TopK:               cfg.RetrievalTopK,
		PhraseBonus:        cfg.ScorePhraseBonus,
		NGramWeight:        cfg.ScoreNGramWeight,
		TermWeight:         cfg.ScoreTermWeight,
		TermFreqCap:        cfg.ScoreTermFreqCap,
		ProximityBonus:     cfg.ScoreProximityBonus,
		ProximityThreshold: cfg.ScoreProximityThreshold,
	})
	removeUC := usecase.NewRemoveUseCase(repo, chunkRepo, storage, logger)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,
		Chunks: chunkRepo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		QueryUC:   queryUC,
		RemoveUC:  removeUC,

		closeFn: func() {
			queue.Close()
			if geminiClient != nil {
				_ = geminiClient.Close()
			}
			_ = db.Close()
		},
	}, nil
}

func newObjectStorage(ctx context.Context, cfg config.Config) (ports.ObjectStorage, error) {
	switch cfg.StorageBackend {
	case "s3":
		return s3.New(ctx, s3.Config{
			Region:    cfg.AWSRegion,
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
			Bucket:    cfg.S3Bucket,
		})
	case "local", "":
		return localfs.New(cfg.StoragePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
