package journal

import (
	"net/http"
	"time"
)

// Exchange is one recorded request/response round trip.
type Exchange struct {
	ID              string        `json:"id"`
	Method          string        `json:"method"`
	URL             string        `json:"url"`
	StatusCode      int           `json:"status_code"`
	RequestHeaders  http.Header   `json:"request_headers,omitempty"`
	RequestBody     []byte        `json:"request_body,omitempty"`
	ResponseHeaders http.Header   `json:"response_headers,omitempty"`
	ResponseBody    []byte        `json:"response_body,omitempty"`
	Err             string        `json:"error,omitempty"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration"`
}

// DiffResult describes the response body changes between two exchanges.
type DiffResult struct {
	BaseID string  `json:"base_id"`
	HeadID string  `json:"head_id"`
	Chunks []Chunk `json:"chunks"`
}

// Chunk represents a single change in a diff
type Chunk struct {
	Type    string `json:"type"` // "added" or "removed"
	Content string `json:"content,omitempty"`
}

// Changed reports whether the diff has any chunk.
func (d *DiffResult) Changed() bool {
	return d != nil && len(d.Chunks) > 0
}
