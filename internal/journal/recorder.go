package journal

import (
	"context"
	"time"

	"github.com/raysh454/goarango/internal/logging"
	"github.com/raysh454/goarango/internal/webclient"
)

// Recorder is the part of Journal a RecordingClient needs.
type Recorder interface {
	Record(ctx context.Context, ex *Exchange) error
}

// RecordingClient is a webclient.WebClient decorator that journals every exchange.
// Journal failures are logged and never fail the request.
type RecordingClient struct {
	next   webclient.WebClient
	rec    Recorder
	logger logging.Logger
}

func NewRecordingClient(next webclient.WebClient, rec Recorder, logger logging.Logger) *RecordingClient {
	return &RecordingClient{
		next:   next,
		rec:    rec,
		logger: logging.OrNop(logger).With(logging.Field{Key: "component", Value: "journal"}),
	}
}

func (c *RecordingClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	start := time.Now()
	resp, err := c.next.Do(ctx, req)
	if req == nil {
		return resp, err
	}

	ex := &Exchange{
		Method:         req.Method,
		URL:            req.URL,
		RequestHeaders: req.Headers,
		RequestBody:    req.Body,
		StartedAt:      start,
		Duration:       time.Since(start),
	}
	if err != nil {
		ex.Err = err.Error()
	}
	if resp != nil {
		ex.StatusCode = resp.StatusCode
		ex.ResponseHeaders = resp.Headers
		ex.ResponseBody = resp.Body
	}

	// the caller's context may already be done; the journal write should still land
	if recErr := c.rec.Record(context.WithoutCancel(ctx), ex); recErr != nil {
		c.logger.Warn("failed to record exchange",
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "error", Value: recErr.Error()})
	}
	return resp, err
}

// Close closes the wrapped client only; the journal is owned by its opener.
func (c *RecordingClient) Close() error {
	return c.next.Close()
}
