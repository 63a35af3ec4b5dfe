package documents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"legal-backend/internal/shared/storage/object/local"
)

type purgeRecorder struct {
	purged []string
}

func (p *purgeRecorder) PurgeDocument(ctx context.Context, documentID string) error {
	p.purged = append(p.purged, documentID)
	return nil
}

func newService(t *testing.T) (*Service, *purgeRecorder) {
	t.Helper()
	chat := &purgeRecorder{}
	svc := &Service{
		Repo:  NewMemoryRepo(),
		Store: local.New(t.TempDir()),
		Chat:  chat,
	}
	return svc, chat
}

func TestUploadCreatesPendingDocument(t *testing.T) {
	svc, _ := newService(t)

	doc, err := svc.Upload(context.Background(), "lease.txt", "text/plain", strings.NewReader("lease body"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if doc.ID == "" {
		t.Error("document ID not assigned")
	}
	if doc.AnalysisStatus != StatusPending {
		t.Errorf("status = %q, want pending", doc.AnalysisStatus)
	}
	if doc.SizeBytes != int64(len("lease body")) {
		t.Errorf("SizeBytes = %d", doc.SizeBytes)
	}

	stored, err := svc.Get(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.StorageKey == "" {
		t.Error("storage key not persisted")
	}
}

func TestUploadNormalizesOctetStreamByExtension(t *testing.T) {
	svc, _ := newService(t)

	doc, err := svc.Upload(context.Background(), "lease.txt", "application/octet-stream", strings.NewReader("lease body"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if doc.MimeType != "text/plain" {
		t.Errorf("MimeType = %q, want text/plain", doc.MimeType)
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Upload(context.Background(), "photo.png", "image/png", strings.NewReader("binary"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType", err)
	}
}

func TestUploadRequiresFileName(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Upload(context.Background(), "   ", "text/plain", strings.NewReader("body"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestDeletePurgesChatAndObjects(t *testing.T) {
	svc, chat := newService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "lease.txt", "text/plain", strings.NewReader("lease body"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := svc.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if len(chat.purged) != 1 || chat.purged[0] != doc.ID {
		t.Errorf("chat purge calls = %v, want [%s]", chat.purged, doc.ID)
	}
	if _, err := svc.Get(ctx, doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Store.Open(ctx, doc.StorageKey); err == nil {
		t.Error("stored object still present after delete")
	}
}

func TestDeleteUnknownDocument(t *testing.T) {
	svc, _ := newService(t)
	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
