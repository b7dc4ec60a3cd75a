package webclient_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/goarango/internal/webclient"
)

func TestMetricsClient_CountsByMethodAndCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	ok := &scriptedClient{status: http.StatusCreated}

	m, err := webclient.NewMetricsClient(ok, reg)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := m.Do(context.Background(), &webclient.Request{Method: http.MethodPost, URL: "http://db/_api/document/users"})
		require.NoError(t, err)
	}

	failing, err := webclient.NewMetricsClient(&scriptedClient{err: errors.New("refused")}, reg)
	require.NoError(t, err, "second client must reuse registered collectors")
	_, err = failing.Do(context.Background(), &webclient.Request{Method: http.MethodGet, URL: "http://db/_api/version"})
	require.Error(t, err)

	series, err := testutil.GatherAndCount(reg, "arango_client_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, series, "one histogram per method")

	expected := `
# HELP arango_client_requests_total HTTP requests sent to ArangoDB by method and status code.
# TYPE arango_client_requests_total counter
arango_client_requests_total{code="201",method="POST"} 3
arango_client_requests_total{code="error",method="GET"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "arango_client_requests_total"))
}

func TestMetricsClient_NilRegistererStillCounts(t *testing.T) {
	m, err := webclient.NewMetricsClient(&scriptedClient{status: http.StatusOK}, nil)
	require.NoError(t, err)

	_, err = m.Do(context.Background(), &webclient.Request{Method: http.MethodGet, URL: "http://db/"})
	require.NoError(t, err)
	require.NoError(t, m.Close())
}
