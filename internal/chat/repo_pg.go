package chat

import (
	"context"
	"database/sql"
	"fmt"
)

// PGRepo implements Repo using Postgres. Append order is preserved by
// the chat_messages sequence column rather than by timestamp, so two
// entries written in the same clock tick still list correctly.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Append(ctx context.Context, entry Entry) error {
	const query = `
INSERT INTO chat_messages (id, document_id, question, answer, created_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.DB.ExecContext(ctx, query,
		entry.ID,
		entry.DocumentID,
		entry.Question,
		entry.Answer,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert chat entry: %w", err)
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context, documentID string) ([]Entry, error) {
	const query = `
SELECT id, document_id, question, answer, created_at
FROM chat_messages
WHERE document_id = $1
ORDER BY seq`
	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list chat entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.DocumentID, &entry.Question, &entry.Answer, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scan chat entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list chat entries: %w", err)
	}
	return entries, nil
}

func (r *PGRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM chat_messages WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete chat entries: %w", err)
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
