package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/studyvault/studyvault/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context, vectorDim int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026061501)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	query := fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	title TEXT NOT NULL,
	filename TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	media_type TEXT NOT NULL,
	size_bytes BIGINT NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	total_chunks INTEGER NOT NULL DEFAULT 0,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner_id);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);

CREATE TABLE IF NOT EXISTS chunks (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	owner_id TEXT NOT NULL,
	content TEXT NOT NULL,
	seq INTEGER NOT NULL,
	page INTEGER NOT NULL,
	embedding vector(%d),
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (document_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_chunks_owner ON chunks(owner_id);
`, vectorDim)
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, owner_id, title, filename, storage_path, media_type, size_bytes, status, total_chunks, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		doc.ID, doc.OwnerID, doc.Title, doc.Filename, doc.StoragePath, doc.MediaType,
		doc.SizeBytes, string(doc.Status), doc.TotalChunks, doc.Error, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

const documentColumns = `id, owner_id, title, filename, storage_path, media_type, size_bytes, status, total_chunks, error_message, created_at, updated_at`

func (r *DocumentRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Document, error) {
	var row *sql.Row
	if ownerID == "" {
		row = r.db.QueryRowContext(ctx,
			`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	} else {
		row = r.db.QueryRowContext(ctx,
			`SELECT `+documentColumns+` FROM documents WHERE id = $1 AND owner_id = $2`, id, ownerID)
	}

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

// UpdateStatus advances the persisted state machine. The previous status
// is read first and the update is compare-and-set against it, so an
// illegal or raced transition surfaces instead of silently rewinding.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	current, err := r.GetByID(ctx, "", id)
	if err != nil {
		return err
	}
	if !domain.CanTransition(current.Status, status) {
		return domain.WrapError(domain.ErrInvalidTransition, "update status",
			fmt.Errorf("%s -> %s", current.Status, status))
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1 AND status = $5
`, id, string(status), errMessage, time.Now().UTC(), string(current.Status))
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("status rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrInvalidTransition, "update status",
			fmt.Errorf("document %s changed concurrently", id))
	}
	return nil
}

// Complete finalizes total_chunks together with the completed status in a
// single write so the count is never observable without it.
func (r *DocumentRepository) Complete(ctx context.Context, id string, totalChunks int) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, total_chunks = $3, error_message = '', updated_at = $4
WHERE id = $1 AND status = $5
`, id, string(domain.StatusCompleted), totalChunks, time.Now().UTC(), string(domain.StatusStoringChunks))
	if err != nil {
		return fmt.Errorf("complete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrInvalidTransition, "complete document",
			fmt.Errorf("document %s not in %s", id, domain.StatusStoringChunks))
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM documents WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "delete document", fmt.Errorf("id %s", id))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var status string
	var errMessage sql.NullString

	err := row.Scan(
		&doc.ID, &doc.OwnerID, &doc.Title, &doc.Filename, &doc.StoragePath, &doc.MediaType,
		&doc.SizeBytes, &status, &doc.TotalChunks, &errMessage, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.Status = domain.DocumentStatus(status)
	doc.Error = errMessage.String
	return &doc, nil
}
