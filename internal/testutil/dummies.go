// Package testutil holds in-memory stand-ins for the logger and the
// transport so packages can be tested without a server.
package testutil

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/raysh454/goarango/internal/logging"
	"github.com/raysh454/goarango/internal/webclient"
)

// ErrDummyTransport is returned for URLs listed in DummyWebClient.FailURLs.
var ErrDummyTransport = errors.New("dummy transport failure")

// LogEntry is one recorded log call, including fields bound through With.
type LogEntry struct {
	Level  logging.Level
	Msg    string
	Fields map[string]any
}

// DummyLogger records every call. Children made by With share the record.
type DummyLogger struct {
	once  sync.Once
	rec   *logRecord
	bound []logging.Field
}

type logRecord struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (l *DummyLogger) record() *logRecord {
	l.once.Do(func() {
		if l.rec == nil {
			l.rec = &logRecord{}
		}
	})
	return l.rec
}

func (l *DummyLogger) add(level logging.Level, msg string, fields []logging.Field) {
	m := make(map[string]any, len(l.bound)+len(fields))
	for _, f := range l.bound {
		m[f.Key] = f.Value
	}
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	rec := l.record()
	rec.mu.Lock()
	rec.entries = append(rec.entries, LogEntry{Level: level, Msg: msg, Fields: m})
	rec.mu.Unlock()
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) { l.add(logging.LevelDebug, msg, fields) }
func (l *DummyLogger) Info(msg string, fields ...logging.Field)  { l.add(logging.LevelInfo, msg, fields) }
func (l *DummyLogger) Warn(msg string, fields ...logging.Field)  { l.add(logging.LevelWarn, msg, fields) }
func (l *DummyLogger) Error(msg string, fields ...logging.Field) { l.add(logging.LevelError, msg, fields) }

func (l *DummyLogger) With(fields ...logging.Field) logging.Logger {
	bound := append(append([]logging.Field(nil), l.bound...), fields...)
	return &DummyLogger{rec: l.record(), bound: bound}
}

// Entries returns a copy of everything logged so far.
func (l *DummyLogger) Entries() []LogEntry {
	rec := l.record()
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]LogEntry(nil), rec.entries...)
}

// Messages returns the messages logged at level.
func (l *DummyLogger) Messages(level logging.Level) []string {
	var out []string
	for _, e := range l.Entries() {
		if e.Level == level {
			out = append(out, e.Msg)
		}
	}
	return out
}

// DummyWebClient is a scripted transport. Without Respond it answers every
// request with StatusCode and Body (200 and "{}" when unset).
type DummyWebClient struct {
	Delay      time.Duration
	FailURLs   map[string]bool
	StatusCode int
	Body       string
	Headers    http.Header
	Respond    func(req *webclient.Request) (*webclient.Response, error)

	mu     sync.Mutex
	sent   []*webclient.Request
	closed bool
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if d.Delay > 0 {
		t := time.NewTimer(d.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	d.mu.Lock()
	d.sent = append(d.sent, req)
	d.mu.Unlock()

	switch {
	case d.FailURLs[req.URL]:
		return nil, ErrDummyTransport
	case d.Respond != nil:
		return d.Respond(req)
	}

	resp := &webclient.Response{
		Request:    req,
		StatusCode: d.StatusCode,
		Headers:    d.Headers.Clone(),
		Body:       []byte(d.Body),
		ReceivedAt: time.Now(),
	}
	if resp.StatusCode == 0 {
		resp.StatusCode = http.StatusOK
	}
	if len(resp.Body) == 0 {
		resp.Body = []byte("{}")
	}
	return resp, nil
}

// Last returns the most recent request, or nil.
func (d *DummyWebClient) Last() *webclient.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.sent) == 0 {
		return nil
	}
	return d.sent[len(d.sent)-1]
}

func (d *DummyWebClient) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

func (d *DummyWebClient) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

func (d *DummyWebClient) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
