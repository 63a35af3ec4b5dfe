package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID     string     `json:"documentId"`
	FileName       string     `json:"fileName"`
	MimeType       string     `json:"mimeType"`
	SizeBytes      int64      `json:"sizeBytes"`
	UploadedAt     time.Time  `json:"uploadedAt"`
	AnalysisStatus string     `json:"analysisStatus"`
	Analysis       *Analysis  `json:"analysis,omitempty"`
	AnalyzedAt     *time.Time `json:"analyzedAt,omitempty"`
}

func ToResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID:     doc.ID,
		FileName:       doc.FileName,
		MimeType:       doc.MimeType,
		SizeBytes:      doc.SizeBytes,
		UploadedAt:     doc.UploadedAt,
		AnalysisStatus: doc.AnalysisStatus,
		Analysis:       doc.Analysis,
		AnalyzedAt:     doc.AnalyzedAt,
	}
}
