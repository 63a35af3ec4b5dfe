package chat

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoAppend(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := &PGRepo{DB: db}

	entry := Entry{
		ID:         "entry-1",
		DocumentID: "doc-1",
		Question:   "When is rent due?",
		Answer:     "On the first of each month.",
		Timestamp:  time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO chat_messages").
		WithArgs(entry.ID, entry.DocumentID, entry.Question, entry.Answer, entry.Timestamp).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Append(context.Background(), entry); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListReadsInSequenceOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := &PGRepo{DB: db}

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "document_id", "question", "answer", "created_at"}).
		AddRow("entry-1", "doc-1", "Q1", "A1", now).
		AddRow("entry-2", "doc-1", "Q2", "A2", now.Add(time.Second))

	mock.ExpectQuery("SELECT (.+) FROM chat_messages").
		WithArgs("doc-1").
		WillReturnRows(rows)

	entries, err := repo.List(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries length = %d, want 2", len(entries))
	}
	if entries[0].Question != "Q1" || entries[1].Question != "Q2" {
		t.Errorf("entries out of order: %+v", entries)
	}
}
