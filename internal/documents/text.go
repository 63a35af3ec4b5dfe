package documents

import (
	"context"
	"fmt"
	"io"
	"time"

	"legal-backend/internal/extract"
	"legal-backend/internal/shared/storage/object"
)

// Text returns the document's extracted plain text, extracting it on first
// use and caching the derived object for later analysis and chat requests.
func Text(ctx context.Context, repo Repo, store object.ObjectStore, doc Document) (string, error) {
	key := doc.ExtractedTextKey
	if key == "" {
		if _, err := extract.Text(ctx, store, doc.StorageKey, doc.MimeType, doc.FileName); err != nil {
			return "", fmt.Errorf("document %s mime %s: %w", doc.ID, doc.MimeType, err)
		}
		key = extract.ExtractedKey(doc.StorageKey)
		if err := repo.UpdateExtraction(ctx, doc.ID, key, time.Now().UTC()); err != nil {
			return "", fmt.Errorf("document %s: update extraction: %w", doc.ID, err)
		}
	}

	body, err := store.Open(ctx, key)
	if err != nil {
		return "", fmt.Errorf("document %s: load extracted text: %w", doc.ID, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("document %s: read extracted text: %w", doc.ID, err)
	}
	return string(data), nil
}
