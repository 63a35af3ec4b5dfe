package chat

import "context"

// Repo defines persistence for the append-only chat log. List returns
// entries in append order; it never deduplicates, even for identical
// repeated questions.
type Repo interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context, documentID string) ([]Entry, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}
