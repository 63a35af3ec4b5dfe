package documents

import "time"

// Analysis lifecycle states. Transitions are pending -> processing ->
// completed|failed, with failed -> processing on an explicit retry.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Document represents an uploaded legal document and its analysis state.
type Document struct {
	ID               string
	FileName         string
	MimeType         string
	SizeBytes        int64
	StorageKey       string
	ExtractedTextKey string
	ExtractedAt      *time.Time
	AnalysisStatus   string
	Analysis         *Analysis
	AnalyzedAt       *time.Time
	UploadedAt       time.Time
}

// Analysis is the structured result extracted from one AI analysis response.
// A value is immutable once stored; re-analysis replaces it wholesale.
type Analysis struct {
	Summary        []string `json:"summary"`
	KeyClauses     []Clause `json:"keyClauses"`
	RiskAssessment string   `json:"riskAssessment"`
	PlainEnglish   string   `json:"plainEnglish,omitempty"`
}

// Clause is one extracted clause within an Analysis. Index values are
// contiguous starting at 1.
type Clause struct {
	Index       int    `json:"index"`
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
}
