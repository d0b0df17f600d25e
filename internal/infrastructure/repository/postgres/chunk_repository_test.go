package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/studyvault/studyvault/internal/core/domain"
)

func newChunkRepoWithMock(t *testing.T) (*ChunkRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &ChunkRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestInsertBatchEmptyIsNoop(t *testing.T) {
	repo, mock, done := newChunkRepoWithMock(t)
	defer done()

	if err := repo.InsertBatch(context.Background(), nil); err != nil {
		t.Fatalf("InsertBatch(nil) error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestInsertBatchSingleStatement(t *testing.T) {
	repo, mock, done := newChunkRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	chunks := []domain.Chunk{
		{ID: "c-1", DocumentID: "doc-1", OwnerID: "user-1", Content: "first", Seq: 0, Page: 1, Embedding: []float32{0.1, 0.2}, CreatedAt: now},
		{ID: "c-2", DocumentID: "doc-1", OwnerID: "user-1", Content: "second", Seq: 1, Page: 1, CreatedAt: now},
	}

	mock.ExpectExec("INSERT INTO chunks").
		WithArgs(
			"c-1", "doc-1", "user-1", "first", 0, 1, sqlmock.AnyArg(), now,
			"c-2", "doc-1", "user-1", "second", 1, 1, nil, now,
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := repo.InsertBatch(context.Background(), chunks); err != nil {
		t.Fatalf("InsertBatch() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestInsertBatchFailurePropagates(t *testing.T) {
	repo, mock, done := newChunkRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO chunks").
		WillReturnError(errors.New("unique violation"))

	err := repo.InsertBatch(context.Background(), []domain.Chunk{
		{ID: "c-1", DocumentID: "doc-1", OwnerID: "user-1", Content: "x", CreatedAt: time.Now().UTC()},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListByOwnerFiltersCompletedDocuments(t *testing.T) {
	repo, mock, done := newChunkRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "document_id", "owner_id", "content", "seq", "page", "created_at", "title",
	}).
		AddRow("c-1", "doc-1", "user-1", "first chunk", 0, 1, now, "Bio Notes").
		AddRow("c-2", "doc-1", "user-1", "second chunk", 1, 1, now, "Bio Notes")

	mock.ExpectQuery("SELECT c.id, c.document_id").
		WithArgs("user-1", string(domain.StatusCompleted)).
		WillReturnRows(rows)

	got, err := repo.ListByOwner(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("chunks = %d", len(got))
	}
	if got[0].DocumentTitle != "Bio Notes" || got[0].Seq != 0 {
		t.Fatalf("first chunk = %+v", got[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteByDocument(t *testing.T) {
	repo, mock, done := newChunkRepoWithMock(t)
	defer done()

	mock.ExpectExec("DELETE FROM chunks").
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := repo.DeleteByDocument(context.Background(), "doc-1"); err != nil {
		t.Fatalf("DeleteByDocument() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
