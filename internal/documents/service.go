package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"legal-backend/internal/shared/storage/object"
	"legal-backend/internal/shared/telemetry"
)

var allowedMimeTypes = map[string]struct{}{
	"application/pdf":    {},
	"text/plain":         {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

// ChatLog removes a document's chat history when the document is deleted.
type ChatLog interface {
	PurgeDocument(ctx context.Context, documentID string) error
}

// Service contains business logic for documents.
type Service struct {
	Repo  Repo
	Store object.ObjectStore
	Chat  ChatLog
}

// Upload validates and stores a new document, creating its record in the
// pending analysis state.
func (s *Service) Upload(ctx context.Context, fileName, contentType string, r io.Reader) (Document, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return Document{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	declared := normalizeContentType(contentType, fileName)
	if _, ok := allowedMimeTypes[declared]; !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedType, declared)
	}

	storageKey, sizeBytes, detected, err := s.Store.Save(ctx, fileName, r)
	if err != nil {
		return Document{}, fmt.Errorf("store upload: %w", err)
	}

	mimeType := declared
	if mimeType == "" {
		mimeType = detected
	}

	doc := Document{
		ID:             uuid.NewString(),
		FileName:       fileName,
		MimeType:       mimeType,
		SizeBytes:      sizeBytes,
		StorageKey:     storageKey,
		AnalysisStatus: StatusPending,
		UploadedAt:     time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		// Best-effort cleanup of the orphaned object.
		if delErr := s.Store.Delete(ctx, storageKey); delErr != nil {
			telemetry.Warn("document.orphan_cleanup_failed", map[string]any{
				"storage_key": storageKey,
				"error":       delErr.Error(),
			})
		}
		return Document{}, fmt.Errorf("create document: %w", err)
	}

	telemetry.Info("document.uploaded", map[string]any{
		"document_id": doc.ID,
		"file_name":   doc.FileName,
		"mime_type":   doc.MimeType,
		"size_bytes":  doc.SizeBytes,
	})
	return doc, nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, documentID string) (Document, error) {
	if documentID == "" {
		return Document{}, fmt.Errorf("%w: documentID is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, documentID)
}

// List returns all documents, newest first.
func (s *Service) List(ctx context.Context) ([]Document, error) {
	return s.Repo.List(ctx)
}

// Delete removes a document, its stored objects, and its chat history.
func (s *Service) Delete(ctx context.Context, documentID string) error {
	if documentID == "" {
		return fmt.Errorf("%w: documentID is required", ErrInvalidInput)
	}
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}

	if s.Chat != nil {
		if err := s.Chat.PurgeDocument(ctx, documentID); err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("purge chat history: %w", err)
		}
	}

	if err := s.Repo.Delete(ctx, documentID); err != nil {
		return err
	}

	// Record is gone; object removal failures are logged, not surfaced.
	if err := s.Store.Delete(ctx, doc.StorageKey); err != nil {
		telemetry.Warn("document.object_delete_failed", map[string]any{
			"document_id": documentID,
			"storage_key": doc.StorageKey,
			"error":       err.Error(),
		})
	}
	if doc.ExtractedTextKey != "" {
		if err := s.Store.Delete(ctx, doc.ExtractedTextKey); err != nil {
			telemetry.Warn("document.object_delete_failed", map[string]any{
				"document_id": documentID,
				"storage_key": doc.ExtractedTextKey,
				"error":       err.Error(),
			})
		}
	}

	telemetry.Info("document.deleted", map[string]any{"document_id": documentID})
	return nil
}

func normalizeContentType(contentType, fileName string) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if clean != "" && clean != "application/octet-stream" {
		return clean
	}
	if byExt := mime.TypeByExtension(filepath.Ext(fileName)); byExt != "" {
		return strings.ToLower(strings.TrimSpace(strings.Split(byExt, ";")[0]))
	}
	return clean
}
