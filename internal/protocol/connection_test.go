package protocol_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/raysh454/goarango/internal/logging"
	"github.com/raysh454/goarango/internal/protocol"
	"github.com/raysh454/goarango/internal/testutil"
	"github.com/raysh454/goarango/internal/webclient"
)

func endpointFor(t *testing.T, rawURL string) protocol.Endpoint {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return protocol.Endpoint{Alias: "test", Hostname: u.Hostname(), Port: port}
}

func newConnection(t *testing.T, ts *httptest.Server, ep protocol.Endpoint, opts ...protocol.Option) *protocol.Connection {
	t.Helper()
	wc, err := webclient.NewNetHTTPClient(webclient.Config{}, logging.NopLogger{}, ts.Client())
	require.NoError(t, err)
	conn, err := protocol.NewConnection(ep, wc, logging.NopLogger{}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestConnection_BaseURI(t *testing.T) {
	t.Parallel()
	wc, err := webclient.NewNetHTTPClient(webclient.Config{}, nil, nil)
	require.NoError(t, err)

	conn, err := protocol.NewConnection(protocol.Endpoint{
		Alias: "db1", Hostname: "localhost", Port: 8529, Database: "my db",
	}, wc, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8529/_db/my%20db/", conn.BaseURI())

	other := conn.WithDatabase("")
	assert.Equal(t, "http://localhost:8529/", other.BaseURI())
	assert.Equal(t, "http://localhost:8529/_db/my%20db/", conn.BaseURI(), "original untouched")

	secure, err := protocol.NewConnection(protocol.Endpoint{
		Alias: "s", Hostname: "::1", Port: 8530, Secure: true,
	}, wc, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://[::1]:8530/", secure.BaseURI())
}

func TestNewConnection_RejectsInvalidEndpoint(t *testing.T) {
	t.Parallel()
	wc, err := webclient.NewNetHTTPClient(webclient.Config{}, nil, nil)
	require.NoError(t, err)

	_, err = protocol.NewConnection(protocol.Endpoint{Alias: "x", Hostname: "localhost"}, wc, nil)
	assert.ErrorIs(t, err, protocol.ErrInvalidEndpoint)

	_, err = protocol.NewConnection(protocol.Endpoint{Hostname: "localhost", Port: 1}, wc, nil)
	assert.ErrorIs(t, err, protocol.ErrInvalidEndpoint)

	_, err = protocol.NewConnection(protocol.Endpoint{Alias: "x", Hostname: "localhost", Port: 1}, nil, nil)
	assert.ErrorIs(t, err, protocol.ErrInvalidEndpoint)
}

func TestConnection_Send_HeadersAndAuth(t *testing.T) {
	t.Parallel()
	var got *http.Request
	var body string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"_id":"c/1","_key":"1","_rev":"r1"}`)
	}))
	defer ts.Close()

	ep := endpointFor(t, ts.URL)
	ep.Database = "shop"
	ep.Username = "root"
	ep.Password = "secret"
	conn := newConnection(t, ts, ep)

	req := protocol.NewRequest(http.MethodPost, protocol.APIDocument, "items")
	req.SetQuery(protocol.ParamWaitForSync, "true")
	req.SetHeader(protocol.ParamIfMatch, "r0")
	require.NoError(t, req.SetBody(map[string]any{"name": "lamp"}))

	resp, err := conn.Send(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/_db/shop/_api/document/items", got.URL.Path)
	assert.Equal(t, "true", got.URL.Query().Get("waitForSync"))
	assert.Equal(t, "r0", got.Header.Get("If-Match"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, "application/json; charset=utf-8", got.Header.Get("Content-Type"))
	user, pass, ok := got.BasicAuth()
	assert.True(t, ok)
	assert.Equal(t, "root", user)
	assert.Equal(t, "secret", pass)
	assert.JSONEq(t, `{"name":"lamp"}`, body)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, protocol.BodyDocument, resp.BodyType)
	assert.Nil(t, resp.Error)
}

func TestConnection_Send_NoAuthWithoutPassword(t *testing.T) {
	t.Parallel()
	var hasAuth bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, hasAuth = r.BasicAuth()
		_, _ = io.WriteString(w, `{}`)
	}))
	defer ts.Close()

	ep := endpointFor(t, ts.URL)
	ep.Username = "root"
	conn := newConnection(t, ts, ep)

	_, err := conn.Send(context.Background(), protocol.NewRequest(http.MethodGet, protocol.APIVersion))
	require.NoError(t, err)
	assert.False(t, hasAuth)
}

func TestConnection_Send_ArangoError(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":true,"code":404,"errorNum":1924,"errorMessage":"graph 'g' not found"}`)
	}))
	defer ts.Close()

	conn := newConnection(t, ts, endpointFor(t, ts.URL))
	resp, err := conn.Send(context.Background(), protocol.NewRequest(http.MethodGet, protocol.APIGraph, "g"))
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, 404, resp.Error.StatusCode)
	assert.Equal(t, protocol.ErrNumGraphNotFound, resp.Error.Number)
	assert.Equal(t, "ArangoDB error: graph 'g' not found", resp.Error.Message)
	assert.True(t, resp.Error.IsArangoError())
}

func TestConnection_Send_TransportError(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ep := endpointFor(t, ts.URL)
	conn := newConnection(t, ts, ep)
	ts.Close()

	resp, err := conn.Send(context.Background(), protocol.NewRequest(http.MethodGet, protocol.APIVersion))
	assert.Nil(t, resp)
	assert.Error(t, err)

	_, err = conn.Send(context.Background(), nil)
	assert.True(t, errors.Is(err, protocol.ErrNilRequest))
}

func TestConnection_Send_RecordsSpan(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"error":true,"code":409,"errorNum":1207,"errorMessage":"duplicate name"}`)
	}))
	defer ts.Close()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	conn := newConnection(t, ts, endpointFor(t, ts.URL), protocol.WithTracerProvider(tp))

	_, err := conn.Send(context.Background(), protocol.NewRequest(http.MethodPost, protocol.APICollection))
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "arango POST", span.Name())
	assert.Equal(t, trace.SpanKindClient, span.SpanKind())
	assert.Equal(t, codes.Error, span.Status().Code)

	attrs := map[string]any{}
	for _, kv := range span.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "arangodb", attrs["db.system"])
	assert.Equal(t, int64(409), attrs["http.response.status_code"])
	assert.Equal(t, int64(1207), attrs["arango.error_num"])
}

func TestConnection_Send_DatabaseScopedTarget(t *testing.T) {
	t.Parallel()
	wc := &testutil.DummyWebClient{StatusCode: http.StatusAccepted, Body: `{"_key":"a"}`}
	conn, err := protocol.NewConnection(protocol.Endpoint{
		Alias:    "dummy",
		Hostname: "db.local",
		Port:     8529,
		Database: "shop floor",
	}, wc, &testutil.DummyLogger{})
	require.NoError(t, err)

	req := protocol.NewRequest(http.MethodPost, protocol.APIDocument, "orders")
	req.SetQuery(protocol.ParamReturnNew, "true")
	require.NoError(t, req.SetBody(`{"_key":"a"}`))

	resp, err := conn.Send(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, protocol.BodyDocument, resp.BodyType)

	sent := wc.Last()
	require.NotNil(t, sent)
	assert.Equal(t, "http://db.local:8529/_db/shop%20floor/_api/document/orders?returnNew=true", sent.URL)
	assert.Equal(t, "application/json; charset=utf-8", sent.Headers.Get("Content-Type"))
	assert.Empty(t, sent.Headers.Get("Authorization"))

	require.NoError(t, conn.Close())
	assert.True(t, wc.Closed())
}

func TestConnection_Send_DummyTransportFailure(t *testing.T) {
	t.Parallel()
	logger := &testutil.DummyLogger{}
	wc := &testutil.DummyWebClient{FailURLs: map[string]bool{"http://db.local:8529/_api/version": true}}
	conn, err := protocol.NewConnection(protocol.Endpoint{Alias: "dummy", Hostname: "db.local", Port: 8529}, wc, logger)
	require.NoError(t, err)

	_, err = conn.Send(context.Background(), protocol.NewRequest(http.MethodGet, protocol.APIVersion))
	assert.ErrorContains(t, err, "send GET _api/version")
	assert.ErrorIs(t, err, testutil.ErrDummyTransport)
	assert.Equal(t, 1, wc.Count())

	require.Equal(t, []string{"exchange failed"}, logger.Messages(logging.LevelWarn))
	fields := logger.Entries()[0].Fields
	assert.Equal(t, "dummy", fields["alias"])
	assert.Equal(t, "connection", fields["component"])
	assert.Equal(t, "_api/version", fields["path"])
}
