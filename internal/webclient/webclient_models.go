package webclient

import (
	"net/http"
	"time"
)

// Request is one fully specified HTTP exchange. URL is absolute; Body is
// sent as-is and may be nil.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

// Response carries the buffered answer to a Request.
type Response struct {
	Request    *Request
	StatusCode int
	Headers    http.Header
	Body       []byte

	// ReceivedAt is when the body finished reading; Duration spans the
	// whole round trip.
	ReceivedAt time.Time
	Duration   time.Duration
}

// IsServerError reports a 5xx status, which the breaker counts as a failure.
func (r *Response) IsServerError() bool {
	return r != nil && r.StatusCode >= http.StatusInternalServerError
}
