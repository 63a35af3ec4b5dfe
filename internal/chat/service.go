package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"legal-backend/internal/documents"
	"legal-backend/internal/llm"
	"legal-backend/internal/shared/storage/object"
	"legal-backend/internal/shared/telemetry"
)

// Service answers questions about a document and keeps the exchange
// log. Questions for one document are answered one at a time, so the
// log order matches the order questions arrived in rather than the
// order model responses came back.
type Service struct {
	Repo  Repo
	Docs  documents.Repo
	Store object.ObjectStore
	LLM   llm.Client
	Cache *HistoryCache

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(repo Repo, docs documents.Repo, store object.ObjectStore, client llm.Client, cache *HistoryCache) *Service {
	return &Service{
		Repo:  repo,
		Docs:  docs,
		Store: store,
		LLM:   client,
		Cache: cache,
		locks: make(map[string]*sync.Mutex),
	}
}

// Ask answers the question against the document's text and appends the
// exchange to the log. A failed generation leaves the log unchanged.
func (s *Service) Ask(ctx context.Context, documentID, question string) (Entry, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Entry{}, fmt.Errorf("%w: question is required", documents.ErrInvalidInput)
	}

	lock := s.documentLock(documentID)
	lock.Lock()
	defer lock.Unlock()

	doc, err := s.Docs.GetByID(ctx, documentID)
	if err != nil {
		return Entry{}, err
	}

	text, err := documents.Text(ctx, s.Docs, s.Store, doc)
	if err != nil {
		return Entry{}, fmt.Errorf("load document text: %w", err)
	}

	answer, err := s.LLM.Generate(ctx, llm.QuestionPrompt(text, question))
	if err != nil {
		telemetry.Error("chat.failed", map[string]any{
			"document_id": documentID,
			"error":       err.Error(),
		})
		return Entry{}, err
	}

	entry := Entry{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		Question:   question,
		Answer:     answer,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.Repo.Append(ctx, entry); err != nil {
		return Entry{}, fmt.Errorf("append chat entry: %w", err)
	}
	if err := s.Cache.DeleteHistory(ctx, documentID); err != nil {
		telemetry.Warn("chat.cache_invalidate_failed", map[string]any{
			"document_id": documentID,
			"error":       err.Error(),
		})
	}

	telemetry.Info("chat.answered", map[string]any{
		"document_id": documentID,
		"entry_id":    entry.ID,
	})
	return entry, nil
}

// History returns the full ordered exchange log for the document. A
// document with no prior questions yields an empty list, not an error.
func (s *Service) History(ctx context.Context, documentID string) ([]Entry, error) {
	if _, err := s.Docs.GetByID(ctx, documentID); err != nil {
		return nil, err
	}

	if cached, hit, err := s.Cache.GetHistory(ctx, documentID); err == nil && hit {
		return cached, nil
	} else if err != nil {
		telemetry.Warn("chat.cache_read_failed", map[string]any{
			"document_id": documentID,
			"error":       err.Error(),
		})
	}

	entries, err := s.Repo.List(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.SetHistory(ctx, documentID, entries); err != nil {
		telemetry.Warn("chat.cache_write_failed", map[string]any{
			"document_id": documentID,
			"error":       err.Error(),
		})
	}
	return entries, nil
}

// PurgeDocument drops the document's chat log. Called when the document
// itself is deleted.
func (s *Service) PurgeDocument(ctx context.Context, documentID string) error {
	if err := s.Repo.DeleteByDocument(ctx, documentID); err != nil {
		return err
	}
	if err := s.Cache.DeleteHistory(ctx, documentID); err != nil {
		telemetry.Warn("chat.cache_invalidate_failed", map[string]any{
			"document_id": documentID,
			"error":       err.Error(),
		})
	}
	return nil
}

func (s *Service) documentLock(documentID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[documentID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[documentID] = lock
	}
	return lock
}

var _ documents.ChatLog = (*Service)(nil)
