package arango_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raysh454/goarango/arango"
	"github.com/raysh454/goarango/internal/fakearango"
)

const (
	testUser     = "root"
	testPassword = "openSesame"
)

// testServer is a fakearango instance behind httptest that counts requests.
type testServer struct {
	*httptest.Server
	requests atomic.Int64
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	emu := fakearango.NewServer(fakearango.Config{Username: testUser, Password: testPassword})
	ts := &testServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.requests.Add(1)
		emu.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) endpoint(t *testing.T) arango.Endpoint {
	t.Helper()
	return endpointFor(t, ts.URL)
}

// endpointFor builds a credentialed endpoint for a server URL.
func endpointFor(t *testing.T, rawURL string) arango.Endpoint {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return arango.Endpoint{
		Alias:    "test",
		Hostname: u.Hostname(),
		Port:     port,
		Username: testUser,
		Password: testPassword,
	}
}

func newTestClient(t *testing.T, opts ...arango.Option) (*arango.Client, *testServer) {
	t.Helper()
	ts := newTestServer(t)
	c, err := arango.New(ts.endpoint(t), append([]arango.Option{arango.WithHTTPClient(ts.Client())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, ts
}

// requireSuccess fails the test with the result's error when it did not succeed.
func requireSuccess[T any](t *testing.T, res *arango.Result[T]) {
	t.Helper()
	require.Truef(t, res.Success, "expected success, got status %d: %v", res.StatusCode, res.Error)
	require.Nil(t, res.Error)
}
