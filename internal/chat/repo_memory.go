package chat

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory chat log used for development and tests.
type MemoryRepo struct {
	mu      sync.RWMutex
	entries map[string][]Entry
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{entries: make(map[string][]Entry)}
}

// Append stores the entry at the end of the document's log. Timestamps
// are bumped when needed so they increase strictly in append order even
// when the clock stalls.
func (r *MemoryRepo) Append(ctx context.Context, entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.entries[entry.DocumentID]
	if n := len(log); n > 0 && !entry.Timestamp.After(log[n-1].Timestamp) {
		entry.Timestamp = log[n-1].Timestamp.Add(time.Microsecond)
	}
	r.entries[entry.DocumentID] = append(log, entry)
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, documentID string) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	log := r.entries[documentID]
	out := make([]Entry, len(log))
	copy(out, log)
	return out, nil
}

func (r *MemoryRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, documentID)
	return nil
}
