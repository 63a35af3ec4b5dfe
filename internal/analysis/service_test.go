package analysis

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"legal-backend/internal/documents"
	"legal-backend/internal/llm"
	"legal-backend/internal/shared/storage/object/local"
)

const modelResponse = "EXECUTIVE SUMMARY\n" +
	"A one year residential lease.\n" +
	"KEY CLAUSES ANALYSIS\n" +
	"1. Payment Terms: Rent due monthly.\n" +
	"2. Termination: 30 day notice.\n" +
	"RISK ASSESSMENT\n" +
	"Moderate risk."

// fakeClient scripts model responses and counts invocations. When gate
// is set, Generate signals started and blocks until gate is closed.
type fakeClient struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     atomic.Int32

	started chan struct{}
	gate    chan struct{}
}

func (f *fakeClient) Generate(ctx context.Context, prompt string) (string, error) {
	n := int(f.calls.Add(1)) - 1
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if n < len(f.errs) && f.errs[n] != nil {
		return "", f.errs[n]
	}
	if n < len(f.responses) {
		return f.responses[n], nil
	}
	return modelResponse, nil
}

func newTestService(t *testing.T, client llm.Client) (*Service, *documents.MemoryRepo, documents.Document) {
	t.Helper()
	repo := documents.NewMemoryRepo()
	store := local.New(t.TempDir())

	ctx := context.Background()
	key, _, _, err := store.Save(ctx, "lease.txt", strings.NewReader("This lease agreement is made between landlord and tenant for the property at 1 Main Street."))
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
	if err := repo.Create(ctx, doc); err != nil {
		t.Fatalf("seed document: %v", err)
	}

	return NewService(repo, store, client), repo, doc
}

func TestRequestProducesAnalysis(t *testing.T) {
	client := &fakeClient{}
	svc, repo, doc := newTestService(t, client)

	got, err := svc.Request(context.Background(), doc.ID, false)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if got.AnalysisStatus != documents.StatusCompleted {
		t.Errorf("status = %q, want completed", got.AnalysisStatus)
	}
	if got.Analysis == nil || len(got.Analysis.KeyClauses) != 2 {
		t.Fatalf("Analysis = %+v, want two clauses", got.Analysis)
	}
	if got.AnalyzedAt == nil {
		t.Error("AnalyzedAt not set")
	}

	stored, err := repo.GetByID(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.AnalysisStatus != documents.StatusCompleted || stored.Analysis == nil {
		t.Errorf("stored doc = status %q analysis %v, want completed with record", stored.AnalysisStatus, stored.Analysis)
	}
}

func TestRequestCollapsesConcurrentCalls(t *testing.T) {
	client := &fakeClient{
		started: make(chan struct{}, 1),
		gate:    make(chan struct{}),
	}
	svc, _, doc := newTestService(t, client)

	type result struct {
		doc documents.Document
		err error
	}
	results := make(chan result, 2)
	run := func() {
		d, err := svc.Request(context.Background(), doc.ID, false)
		results <- result{d, err}
	}

	go run()
	<-client.started
	go run()
	// Give the second request time to join the in-flight attempt.
	time.Sleep(50 * time.Millisecond)
	close(client.gate)

	first := <-results
	second := <-results
	if first.err != nil || second.err != nil {
		t.Fatalf("errors: %v, %v", first.err, second.err)
	}
	if n := client.calls.Load(); n != 1 {
		t.Errorf("model calls = %d, want 1", n)
	}
	if !reflect.DeepEqual(first.doc.Analysis, second.doc.Analysis) {
		t.Errorf("callers saw different records:\n%+v\n%+v", first.doc.Analysis, second.doc.Analysis)
	}
}

func TestRequestServesCachedResult(t *testing.T) {
	client := &fakeClient{}
	svc, _, doc := newTestService(t, client)

	first, err := svc.Request(context.Background(), doc.ID, false)
	if err != nil {
		t.Fatalf("first Request: %v", err)
	}
	second, err := svc.Request(context.Background(), doc.ID, false)
	if err != nil {
		t.Fatalf("second Request: %v", err)
	}

	if n := client.calls.Load(); n != 1 {
		t.Errorf("model calls = %d, want 1", n)
	}
	if !reflect.DeepEqual(first.Analysis, second.Analysis) {
		t.Errorf("cached record differs from original")
	}
}

func TestRequestForceReplacesRecord(t *testing.T) {
	client := &fakeClient{
		responses: []string{
			modelResponse,
			"EXECUTIVE SUMMARY\nRevised reading of the lease.\nRISK ASSESSMENT\nHigh risk.",
		},
	}
	svc, _, doc := newTestService(t, client)

	if _, err := svc.Request(context.Background(), doc.ID, false); err != nil {
		t.Fatalf("first Request: %v", err)
	}
	got, err := svc.Request(context.Background(), doc.ID, true)
	if err != nil {
		t.Fatalf("forced Request: %v", err)
	}

	if n := client.calls.Load(); n != 2 {
		t.Errorf("model calls = %d, want 2", n)
	}
	if got.Analysis == nil || got.Analysis.RiskAssessment != "High risk." {
		t.Errorf("Analysis = %+v, want replaced record", got.Analysis)
	}
}

func TestRequestFailureThenManualRetry(t *testing.T) {
	client := &fakeClient{
		errs: []error{&llm.GenerationError{Kind: llm.KindServiceError, Message: "upstream down"}},
	}
	svc, repo, doc := newTestService(t, client)

	_, err := svc.Request(context.Background(), doc.ID, false)
	if !llm.IsGenerationError(err) {
		t.Fatalf("err = %v, want generation error", err)
	}

	stored, _ := repo.GetByID(context.Background(), doc.ID)
	if stored.AnalysisStatus != documents.StatusFailed {
		t.Errorf("status = %q, want failed", stored.AnalysisStatus)
	}
	if stored.Analysis != nil {
		t.Errorf("failed document still carries a record: %+v", stored.Analysis)
	}

	got, err := svc.Request(context.Background(), doc.ID, false)
	if err != nil {
		t.Fatalf("retry Request: %v", err)
	}
	if got.AnalysisStatus != documents.StatusCompleted {
		t.Errorf("status after retry = %q, want completed", got.AnalysisStatus)
	}
	if n := client.calls.Load(); n != 2 {
		t.Errorf("model calls = %d, want 2", n)
	}
}

func TestRequestEmptyModelOutputFails(t *testing.T) {
	client := &fakeClient{responses: []string{"   \n  "}}
	svc, repo, doc := newTestService(t, client)

	_, err := svc.Request(context.Background(), doc.ID, false)
	if !errors.Is(err, ErrEmptyAnalysis) {
		t.Fatalf("err = %v, want ErrEmptyAnalysis", err)
	}

	stored, _ := repo.GetByID(context.Background(), doc.ID)
	if stored.AnalysisStatus != documents.StatusFailed {
		t.Errorf("status = %q, want failed", stored.AnalysisStatus)
	}
}

func TestRequestStorageErrorLeavesStatusUntouched(t *testing.T) {
	client := &fakeClient{}
	svc, repo, doc := newTestService(t, client)

	// Point the record at an object that does not exist.
	broken := doc
	broken.ID = "doc-broken"
	broken.StorageKey = "documents/nope.txt"
	if err := repo.Create(context.Background(), broken); err != nil {
		t.Fatalf("seed document: %v", err)
	}

	_, err := svc.Request(context.Background(), broken.ID, false)
	if err == nil {
		t.Fatal("expected storage error")
	}
	if llm.IsGenerationError(err) || errors.Is(err, ErrEmptyAnalysis) {
		t.Errorf("storage failure misclassified: %v", err)
	}
	if n := client.calls.Load(); n != 0 {
		t.Errorf("model calls = %d, want 0", n)
	}

	stored, _ := repo.GetByID(context.Background(), broken.ID)
	if stored.AnalysisStatus != documents.StatusPending {
		t.Errorf("status = %q, want pending", stored.AnalysisStatus)
	}
}

func TestRequestUnknownDocument(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeClient{})
	_, err := svc.Request(context.Background(), "missing", false)
	if !errors.Is(err, documents.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
