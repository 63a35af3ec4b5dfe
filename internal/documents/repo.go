package documents

import (
	"context"
	"time"
)

// Repo defines persistence operations for documents.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, documentID string) (Document, error)
	List(ctx context.Context) ([]Document, error)
	Delete(ctx context.Context, documentID string) error
	UpdateExtraction(ctx context.Context, documentID, extractedTextKey string, extractedAt time.Time) error
	// UpdateAnalysis sets the analysis status and result as one unit. A nil
	// result clears any stored record; readers never observe a status that
	// disagrees with the record.
	UpdateAnalysis(ctx context.Context, documentID, status string, result *Analysis, analyzedAt *time.Time) error
}
