// Package chat keeps the per-document question/answer log.
package chat

import "time"

// Entry is one question/answer exchange. Answers are stored as raw
// model text; consumers render them as-is.
type Entry struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"documentId"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Timestamp  time.Time `json:"timestamp"`
}
