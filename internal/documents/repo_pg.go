package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document row.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (id, file_name, mime_type, size_bytes, storage_key, extracted_text_key, extracted_at, analysis_status, analysis_result, analyzed_at, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	resultPayload, err := marshalAnalysis(doc.Analysis)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.FileName,
		doc.MimeType,
		doc.SizeBytes,
		doc.StorageKey,
		nullString(doc.ExtractedTextKey),
		doc.ExtractedAt,
		doc.AnalysisStatus,
		resultPayload,
		doc.AnalyzedAt,
		doc.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetByID returns a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	const query = `
SELECT id, file_name, mime_type, size_bytes, storage_key, extracted_text_key, extracted_at, analysis_status, analysis_result, analyzed_at, uploaded_at
FROM documents
WHERE id = $1
LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("select document: %w", err)
	}
	return doc, nil
}

// List returns all documents, newest first.
func (r *PGRepo) List(ctx context.Context) ([]Document, error) {
	const query = `
SELECT id, file_name, mime_type, size_bytes, storage_key, extracted_text_key, extracted_at, analysis_status, analysis_result, analyzed_at, uploaded_at
FROM documents
ORDER BY uploaded_at DESC, id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Delete removes a document row. Chat messages cascade via FK.
func (r *PGRepo) Delete(ctx context.Context, documentID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateExtraction records the derived extracted-text object for a document.
func (r *PGRepo) UpdateExtraction(ctx context.Context, documentID, extractedTextKey string, extractedAt time.Time) error {
	const query = `UPDATE documents SET extracted_text_key = $2, extracted_at = $3 WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, documentID, extractedTextKey, extractedAt)
	if err != nil {
		return fmt.Errorf("update extraction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update extraction: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateAnalysis sets status and result in a single statement so readers
// always see a consistent pair.
func (r *PGRepo) UpdateAnalysis(ctx context.Context, documentID, status string, result *Analysis, analyzedAt *time.Time) error {
	const query = `UPDATE documents SET analysis_status = $2, analysis_result = $3, analyzed_at = $4 WHERE id = $1`
	resultPayload, err := marshalAnalysis(result)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, documentID, status, resultPayload, analyzedAt)
	if err != nil {
		return fmt.Errorf("update analysis: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update analysis: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var extractedKey sql.NullString
	var extractedAt sql.NullTime
	var resultPayload sql.NullString
	var analyzedAt sql.NullTime
	err := row.Scan(
		&doc.ID,
		&doc.FileName,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.StorageKey,
		&extractedKey,
		&extractedAt,
		&doc.AnalysisStatus,
		&resultPayload,
		&analyzedAt,
		&doc.UploadedAt,
	)
	if err != nil {
		return Document{}, err
	}
	if extractedKey.Valid {
		doc.ExtractedTextKey = extractedKey.String
	}
	if extractedAt.Valid {
		t := extractedAt.Time
		doc.ExtractedAt = &t
	}
	if resultPayload.Valid && resultPayload.String != "" {
		var analysis Analysis
		if err := json.Unmarshal([]byte(resultPayload.String), &analysis); err != nil {
			return Document{}, fmt.Errorf("decode analysis result: %w", err)
		}
		doc.Analysis = &analysis
	}
	if analyzedAt.Valid {
		t := analyzedAt.Time
		doc.AnalyzedAt = &t
	}
	return doc, nil
}

func marshalAnalysis(analysis *Analysis) (any, error) {
	if analysis == nil {
		return nil, nil
	}
	data, err := json.Marshal(analysis)
	if err != nil {
		return nil, fmt.Errorf("encode analysis result: %w", err)
	}
	return string(data), nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ Repo = (*PGRepo)(nil)
