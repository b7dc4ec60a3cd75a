package webclient_test

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/goarango/internal/logging"
	"github.com/raysh454/goarango/internal/webclient"
)

type scriptedClient struct {
	calls  atomic.Int32
	status int
	err    error
}

func (s *scriptedClient) Do(_ context.Context, req *webclient.Request) (*webclient.Response, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &webclient.Response{Request: req, StatusCode: s.status}, nil
}

func (s *scriptedClient) Close() error { return nil }

func breakerCfg() webclient.BreakerConfig {
	return webclient.BreakerConfig{
		Name:             "test",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      2,
	}
}

func TestBreakerClient_PassesThroughSuccess(t *testing.T) {
	next := &scriptedClient{status: http.StatusOK}
	b := webclient.NewBreakerClient(next, breakerCfg(), logging.NopLogger{})

	resp, err := b.Do(context.Background(), &webclient.Request{Method: http.MethodGet, URL: "http://db/_api/version"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "closed", b.State())
}

func TestBreakerClient_ServerErrorsReturnResponseAndTrip(t *testing.T) {
	next := &scriptedClient{status: http.StatusServiceUnavailable}
	b := webclient.NewBreakerClient(next, breakerCfg(), logging.NopLogger{})
	req := &webclient.Request{Method: http.MethodGet, URL: "http://db/_api/version"}

	for i := 0; i < 2; i++ {
		resp, err := b.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	}
	assert.Equal(t, "open", b.State())

	_, err := b.Do(context.Background(), req)
	assert.ErrorIs(t, err, webclient.ErrCircuitOpen)
	assert.Equal(t, int32(2), next.calls.Load(), "open breaker must not reach the backend")
}

func TestBreakerClient_TransportErrorsCountAsFailures(t *testing.T) {
	boom := errors.New("connection refused")
	next := &scriptedClient{err: boom}
	b := webclient.NewBreakerClient(next, breakerCfg(), nil)
	req := &webclient.Request{Method: http.MethodGet, URL: "http://db/_api/version"}

	_, err := b.Do(context.Background(), req)
	assert.ErrorIs(t, err, boom)
	_, err = b.Do(context.Background(), req)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, "open", b.State())
}

func TestBreakerClient_ClientErrorsDoNotTrip(t *testing.T) {
	next := &scriptedClient{status: http.StatusNotFound}
	b := webclient.NewBreakerClient(next, breakerCfg(), nil)

	for i := 0; i < 5; i++ {
		resp, err := b.Do(context.Background(), &webclient.Request{Method: http.MethodGet, URL: "http://db/x"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}
	assert.Equal(t, "closed", b.State())
}

type ctxClient struct{ calls atomic.Int32 }

func (c *ctxClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	c.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &webclient.Response{Request: req, StatusCode: http.StatusOK}, nil
}

func (c *ctxClient) Close() error { return nil }

func TestBreakerClient_CallerCancellationDoesNotTrip(t *testing.T) {
	next := &ctxClient{}
	b := webclient.NewBreakerClient(next, breakerCfg(), nil)
	req := &webclient.Request{Method: http.MethodGet, URL: "http://db/_api/version"}

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelExpired()

	for i := 0; i < 3; i++ {
		_, err := b.Do(canceled, req)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, webclient.ErrCircuitOpen)
	}
	_, err := b.Do(expired, req)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "closed", b.State())

	resp, err := b.Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(5), next.calls.Load())
}
