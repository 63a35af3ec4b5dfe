package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"legal-backend/internal/documents"
	"legal-backend/internal/llm"
	"legal-backend/internal/shared/storage/object/local"
)

// answerClient returns a canned answer per question, optionally after a
// per-question delay to simulate uneven model latency.
type answerClient struct {
	answers map[string]string
	delays  map[string]time.Duration
	err     error
}

func (a *answerClient) Generate(ctx context.Context, prompt string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	for question, answer := range a.answers {
		if strings.Contains(prompt, question) {
			if d := a.delays[question]; d > 0 {
				time.Sleep(d)
			}
			return answer, nil
		}
	}
	return "I could not find that in the document.", nil
}

func newTestService(t *testing.T, client llm.Client) (*Service, documents.Document) {
	t.Helper()
	docs := documents.NewMemoryRepo()
	store := local.New(t.TempDir())

	ctx := context.Background()
	key, _, _, err := store.Save(ctx, "lease.txt", strings.NewReader("This lease runs for one year. Rent is due on the first of each month. The deposit equals two months of rent."))
	if err != nil {
		t.Fatalf("seed object: %v", err)
	}

	doc := documents.Document{
		ID:             "doc-1",
		FileName:       "lease.txt",
		MimeType:       "text/plain",
		StorageKey:     key,
		AnalysisStatus: documents.StatusPending,
		UploadedAt:     time.Now().UTC(),
	}
	if err := docs.Create(ctx, doc); err != nil {
		t.Fatalf("seed document: %v", err)
	}

	return NewService(NewMemoryRepo(), docs, store, client, nil), doc
}

func TestAskAppendsInArrivalOrder(t *testing.T) {
	client := &answerClient{
		answers: map[string]string{
			"Q1": "A1",
			"Q2": "A2",
			"Q3": "A3",
		},
		// The first question gets the slowest answer; order must still
		// follow the question order.
		delays: map[string]time.Duration{
			"Q1": 30 * time.Millisecond,
			"Q2": 10 * time.Millisecond,
		},
	}
	svc, doc := newTestService(t, client)

	ctx := context.Background()
	for _, q := range []string{"Q1", "Q2", "Q3"} {
		if _, err := svc.Ask(ctx, doc.ID, q); err != nil {
			t.Fatalf("Ask(%s): %v", q, err)
		}
	}

	history, err := svc.History(ctx, doc.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	for i, want := range []string{"Q1", "Q2", "Q3"} {
		if history[i].Question != want {
			t.Errorf("history[%d].Question = %q, want %q", i, history[i].Question, want)
		}
	}
	for i := 1; i < len(history); i++ {
		if !history[i].Timestamp.After(history[i-1].Timestamp) {
			t.Errorf("timestamps not strictly increasing at %d: %v then %v", i, history[i-1].Timestamp, history[i].Timestamp)
		}
	}
}

func TestAskStoresRepeatedQuestionsSeparately(t *testing.T) {
	svc, doc := newTestService(t, &answerClient{answers: map[string]string{"When is rent due": "On the first."}})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.Ask(ctx, doc.ID, "When is rent due"); err != nil {
			t.Fatalf("Ask: %v", err)
		}
	}

	history, err := svc.History(ctx, doc.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 3 {
		t.Errorf("history length = %d, want 3 separate entries", len(history))
	}
}

func TestAskFailureLeavesLogUnchanged(t *testing.T) {
	svc, doc := newTestService(t, &answerClient{
		err: &llm.GenerationError{Kind: llm.KindTimeout, Message: "deadline exceeded"},
	})

	ctx := context.Background()
	_, err := svc.Ask(ctx, doc.ID, "Q1")
	if llm.KindOf(err) != llm.KindTimeout {
		t.Fatalf("err = %v, want timeout generation error", err)
	}

	history, err := svc.History(ctx, doc.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history length = %d, want 0 after failed question", len(history))
	}
}

func TestAskValidation(t *testing.T) {
	svc, doc := newTestService(t, &answerClient{})

	if _, err := svc.Ask(context.Background(), doc.ID, "   "); !errors.Is(err, documents.ErrInvalidInput) {
		t.Errorf("empty question err = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.Ask(context.Background(), "missing", "Q"); !errors.Is(err, documents.ErrNotFound) {
		t.Errorf("unknown document err = %v, want ErrNotFound", err)
	}
}

func TestHistoryEmptyForFreshDocument(t *testing.T) {
	svc, doc := newTestService(t, &answerClient{})

	history, err := svc.History(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history length = %d, want 0", len(history))
	}
}

func TestPurgeDocumentDropsHistory(t *testing.T) {
	svc, doc := newTestService(t, &answerClient{answers: map[string]string{"Q1": "A1"}})

	ctx := context.Background()
	if _, err := svc.Ask(ctx, doc.ID, "Q1"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if err := svc.PurgeDocument(ctx, doc.ID); err != nil {
		t.Fatalf("PurgeDocument: %v", err)
	}

	history, err := svc.History(ctx, doc.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history length = %d, want 0 after purge", len(history))
	}
}
