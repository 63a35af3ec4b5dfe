package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"legal-backend/internal/documents"
	"legal-backend/internal/llm"
	"legal-backend/internal/shared/storage/object"
	"legal-backend/internal/shared/telemetry"
)

// Service drives the analysis lifecycle for a document. Per document it
// enforces pending -> processing -> completed|failed, serves cached
// results, and collapses concurrent requests into one model call.
type Service struct {
	Repo  documents.Repo
	Store object.ObjectStore
	LLM   llm.Client

	group singleflight.Group
}

func NewService(repo documents.Repo, store object.ObjectStore, client llm.Client) *Service {
	return &Service{Repo: repo, Store: store, LLM: client}
}

// Request returns the analysis for the document, producing it if
// needed. A completed document is served from the stored record without
// touching the model unless force is set. Concurrent requests for the
// same document share a single in-flight attempt and receive the same
// outcome. A failed document is only re-attempted through another
// explicit call here.
func (s *Service) Request(ctx context.Context, documentID string, force bool) (documents.Document, error) {
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return documents.Document{}, err
	}
	if doc.AnalysisStatus == documents.StatusCompleted && doc.Analysis != nil && !force {
		return doc, nil
	}

	// The flight keeps the caller's values but not its cancellation: an
	// abandoned request still runs to completion and persists its state,
	// and joined callers are not cut off by the initiator hanging up.
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(documentID, func() (any, error) {
		return s.analyze(flightCtx, documentID, force)
	})
	if err != nil {
		return documents.Document{}, err
	}
	return v.(documents.Document), nil
}

func (s *Service) analyze(ctx context.Context, documentID string, force bool) (documents.Document, error) {
	// Re-read inside the flight: a request that queued behind another
	// may find the work already done.
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return documents.Document{}, err
	}
	if doc.AnalysisStatus == documents.StatusCompleted && doc.Analysis != nil && !force {
		return doc, nil
	}

	// Load the text before touching the status so a storage failure
	// surfaces as its own error instead of marking the analysis failed.
	text, err := documents.Text(ctx, s.Repo, s.Store, doc)
	if err != nil {
		return documents.Document{}, fmt.Errorf("load document text: %w", err)
	}

	// Entering processing clears any prior record so readers never see
	// a stale result alongside an in-flight status.
	if err := s.Repo.UpdateAnalysis(ctx, documentID, documents.StatusProcessing, nil, nil); err != nil {
		return documents.Document{}, fmt.Errorf("mark processing: %w", err)
	}
	telemetry.Info("analysis.started", map[string]any{
		"document_id":      documentID,
		"force":            force,
		"statusTransition": doc.AnalysisStatus + "->" + documents.StatusProcessing,
	})

	raw, err := s.LLM.Generate(ctx, llm.AnalysisPrompt(text))
	if err != nil {
		return documents.Document{}, s.fail(ctx, documentID, err)
	}

	record, err := Parse(raw)
	if err != nil {
		return documents.Document{}, s.fail(ctx, documentID, err)
	}

	now := time.Now().UTC()
	if err := s.Repo.UpdateAnalysis(ctx, documentID, documents.StatusCompleted, &record, &now); err != nil {
		return documents.Document{}, fmt.Errorf("store analysis: %w", err)
	}
	telemetry.Info("analysis.completed", map[string]any{
		"document_id":      documentID,
		"clauses":          len(record.KeyClauses),
		"statusTransition": documents.StatusProcessing + "->" + documents.StatusCompleted,
	})

	doc.AnalysisStatus = documents.StatusCompleted
	doc.Analysis = &record
	doc.AnalyzedAt = &now
	return doc, nil
}

// fail records the failed status and returns the original cause. The
// stored record is cleared so failed never pairs with a result.
func (s *Service) fail(ctx context.Context, documentID string, cause error) error {
	telemetry.Error("analysis.failed", map[string]any{
		"document_id":      documentID,
		"error":            cause.Error(),
		"statusTransition": documents.StatusProcessing + "->" + documents.StatusFailed,
	})
	if err := s.Repo.UpdateAnalysis(ctx, documentID, documents.StatusFailed, nil, nil); err != nil {
		return errors.Join(cause, fmt.Errorf("mark failed: %w", err))
	}
	return cause
}
