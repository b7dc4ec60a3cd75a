package arango_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/raysh454/goarango/arango"
	"github.com/raysh454/goarango/internal/webclient"
)

func TestClient_Version(t *testing.T) {
	c, _ := newTestClient(t)
	res := c.Version(context.Background())
	requireSuccess(t, res)
	assert.Equal(t, "arango", res.Value["server"])
	assert.Equal(t, "3.11.0", res.Value["version"])
}

func TestClient_WrongPasswordIsArangoError(t *testing.T) {
	ts := newTestServer(t)
	ep := ts.endpoint(t)
	ep.Password = "wrong"
	c, err := arango.New(ep, arango.WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	defer c.Close()

	res := c.Version(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "ArangoDB error: not authorized to execute this request", res.Error.Message)
}

func TestClient_TransportFailureIsProtocolError(t *testing.T) {
	ts := newTestServer(t)
	ep := ts.endpoint(t)
	ts.Close()

	c, err := arango.New(ep, arango.WithTimeout(2*time.Second))
	require.NoError(t, err)
	defer c.Close()

	res := c.Graph().List(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, 0, res.StatusCode)
	require.NotNil(t, res.Error)
	assert.Equal(t, 0, res.Error.Number)
	assert.True(t, strings.HasPrefix(res.Error.Message, "Protocol error: "))
	assert.NotNil(t, res.Error.Exception)

	var aerr *arango.Error
	assert.True(t, errors.As(res.Err(), &aerr))
}

func TestClient_InvalidEndpoint(t *testing.T) {
	_, err := arango.New(arango.Endpoint{Alias: "x", Hostname: "localhost", Port: 0})
	assert.Error(t, err)
}

func TestClient_CircuitBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c, err := arango.New(endpointFor(t, ts.URL), arango.WithHTTPClient(ts.Client()), arango.WithCircuitBreaker(0.5, 2, time.Minute))
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		res := c.Version(ctx)
		assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	}
	open := c.Version(ctx)
	assert.Equal(t, 0, open.StatusCode)
	require.NotNil(t, open.Error)
	assert.ErrorIs(t, open.Error, webclient.ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_MetricsJournalAndTracing(t *testing.T) {
	reg := prometheus.NewRegistry()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	core, logs := observer.New(zap.DebugLevel)
	journalPath := filepath.Join(t.TempDir(), "journal.db")

	c, _ := newTestClient(t,
		arango.WithMetrics(reg),
		arango.WithJournal(journalPath),
		arango.WithTracerProvider(tp),
		arango.WithZapLogger(zap.New(core)),
	)
	ctx := context.Background()

	requireSuccess(t, c.Version(ctx))
	missing := c.Graph().Get(ctx, "nope")
	assert.False(t, missing.Success)

	n, err := promtestutil.GatherAndCount(reg, "arango_client_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per method and code")

	require.NotNil(t, c.Journal())
	entries, err := c.Journal().List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, http.StatusNotFound, entries[0].StatusCode)
	assert.Equal(t, "[REDACTED]", entries[0].RequestHeaders.Get("Authorization"))

	assert.Len(t, sr.Ended(), 2)
	assert.NotZero(t, logs.FilterMessage("exchange completed").Len())
}
