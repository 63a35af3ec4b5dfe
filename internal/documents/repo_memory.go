package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores documents in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Document)}
}

// Create stores the document.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[doc.ID] = doc
	return nil
}

// GetByID returns a document by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.byID[documentID]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// List returns all documents, newest first.
func (r *MemoryRepo) List(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	docs := make([]Document, 0, len(r.byID))
	for _, doc := range r.byID {
		docs = append(docs, doc)
	}
	r.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].UploadedAt.Equal(docs[j].UploadedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
	return docs, nil
}

// Delete removes a document.
func (r *MemoryRepo) Delete(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[documentID]; !ok {
		return ErrNotFound
	}
	delete(r.byID, documentID)
	return nil
}

// UpdateExtraction records the derived extracted-text object for a document.
func (r *MemoryRepo) UpdateExtraction(ctx context.Context, documentID, extractedTextKey string, extractedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.byID[documentID]
	if !ok {
		return ErrNotFound
	}
	doc.ExtractedTextKey = extractedTextKey
	doc.ExtractedAt = &extractedAt
	r.byID[documentID] = doc
	return nil
}

// UpdateAnalysis sets status and result under one lock so readers always see
// a consistent pair.
func (r *MemoryRepo) UpdateAnalysis(ctx context.Context, documentID, status string, result *Analysis, analyzedAt *time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.byID[documentID]
	if !ok {
		return ErrNotFound
	}
	doc.AnalysisStatus = status
	doc.Analysis = result
	doc.AnalyzedAt = analyzedAt
	r.byID[documentID] = doc
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
