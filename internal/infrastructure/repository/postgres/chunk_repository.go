package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/studyvault/studyvault/internal/core/domain"
)

type ChunkRepository struct {
	db *sql.DB
}

func NewChunkRepository(db *sql.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// InsertBatch writes one ordered batch as a single multi-row INSERT so a
// batch either lands whole or not at all.
func (r *ChunkRepository) InsertBatch(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	const columnsPerRow = 8
	placeholders := make([]string, 0, len(chunks))
	args := make([]any, 0, len(chunks)*columnsPerRow)
	for i, chunk := range chunks {
		base := i * columnsPerRow
		placeholders = append(placeholders, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8,
		))

		var embedding any
		if len(chunk.Embedding) > 0 {
			embedding = pgvector.NewVector(chunk.Embedding)
		}
		args = append(args,
			chunk.ID, chunk.DocumentID, chunk.OwnerID, chunk.Content,
			chunk.Seq, chunk.Page, embedding, chunk.CreatedAt,
		)
	}

	query := `
INSERT INTO chunks (id, document_id, owner_id, content, seq, page, embedding, created_at)
VALUES ` + strings.Join(placeholders, ",")

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert chunk batch: %w", err)
	}
	return nil
}

// ListByOwner returns every chunk of every completed document the owner
// has, joined with the document title for citations. Chunks of documents
// still mid-pipeline are excluded.
func (r *ChunkRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.OwnedChunk, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT c.id, c.document_id, c.owner_id, c.content, c.seq, c.page, c.created_at, d.title
FROM chunks c
JOIN documents d ON d.id = c.document_id
WHERE c.owner_id = $1 AND d.status = $2
ORDER BY c.document_id, c.seq
`, ownerID, string(domain.StatusCompleted))
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var out []domain.OwnedChunk
	for rows.Next() {
		var chunk domain.OwnedChunk
		err := rows.Scan(
			&chunk.ID, &chunk.DocumentID, &chunk.OwnerID, &chunk.Content,
			&chunk.Seq, &chunk.Page, &chunk.CreatedAt, &chunk.DocumentTitle,
		)
		if err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		out = append(out, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return out, nil
}

func (r *ChunkRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM chunks WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}
