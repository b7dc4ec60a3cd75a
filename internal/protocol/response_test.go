package protocol_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/goarango/internal/protocol"
)

func TestNewResponse_BodyTypes(t *testing.T) {
	tests := []struct {
		body string
		want protocol.BodyType
	}{
		{"", protocol.BodyNull},
		{"  null ", protocol.BodyNull},
		{`{"a":1}`, protocol.BodyDocument},
		{` [1,2]`, protocol.BodyList},
		{`"3.11.0"`, protocol.BodyText},
	}
	for _, tt := range tests {
		r := protocol.NewResponse(http.StatusOK, nil, []byte(tt.body))
		assert.Equal(t, tt.want, r.BodyType, "body %q", tt.body)
		assert.Nil(t, r.Error)
	}
}

func TestNewResponse_ProtocolErrorWithoutBody(t *testing.T) {
	r := protocol.NewResponse(http.StatusBadGateway, nil, []byte("<html>bad gateway</html>"))
	require.NotNil(t, r.Error)
	assert.Equal(t, 502, r.Error.StatusCode)
	assert.Equal(t, 0, r.Error.Number)
	assert.Equal(t, "Protocol error: 502 Bad Gateway", r.Error.Message)
	assert.False(t, r.Error.IsArangoError())
}

func TestNewResponse_DocumentWithoutErrorFlag(t *testing.T) {
	r := protocol.NewResponse(http.StatusPreconditionFailed, nil, []byte(`{"_rev":"r2"}`))
	require.NotNil(t, r.Error)
	assert.Equal(t, 0, r.Error.Number)

	var doc map[string]string
	require.NoError(t, r.ParseBody(&doc))
	assert.Equal(t, "r2", doc["_rev"])
}

func TestNewResponse_ErrorCodeFallsBackToStatus(t *testing.T) {
	r := protocol.NewResponse(http.StatusNotFound, nil, []byte(`{"error":true,"errorNum":1202,"errorMessage":"document not found"}`))
	require.NotNil(t, r.Error)
	assert.Equal(t, 404, r.Error.StatusCode)
	assert.Equal(t, protocol.ErrNumDocumentNotFound, r.Error.Number)
}

func TestResponse_ParseBodyNull(t *testing.T) {
	r := protocol.NewResponse(http.StatusNoContent, nil, nil)
	var v any
	assert.Error(t, r.ParseBody(&v))
}

func TestProtocolError_WrapsException(t *testing.T) {
	cause := errors.New("connection refused")
	e := protocol.NewProtocolError(0, cause)
	assert.Equal(t, "Protocol error: connection refused", e.Error())
	assert.ErrorIs(t, e, cause)
}

func TestEndpoint_Validate(t *testing.T) {
	ep, err := protocol.Endpoint{Alias: " main ", Hostname: "bücher.example", Port: 8529}.Validate()
	require.NoError(t, err)
	assert.Equal(t, "main", ep.Alias)
	assert.Equal(t, "xn--bcher-kva.example", ep.Hostname)
	assert.Equal(t, "xn--bcher-kva.example:8529", ep.HostPort())
	assert.Equal(t, "http", ep.Scheme())

	_, err = protocol.Endpoint{Alias: "a", Hostname: "h", Port: 70000}.Validate()
	assert.ErrorIs(t, err, protocol.ErrInvalidEndpoint)

	_, err = protocol.Endpoint{Alias: "a", Hostname: "h", Port: 1, Database: "a/b"}.Validate()
	assert.ErrorIs(t, err, protocol.ErrInvalidEndpoint)
}

func TestEndpoint_Validate_Hostnames(t *testing.T) {
	valid := map[string]string{
		"arango_db":          "arango_db",
		"Arango-1.Internal.": "arango-1.internal.",
		"::1":                "::1",
		"[fe80::1]":          "fe80::1",
		"10.0.0.7":           "10.0.0.7",
	}
	for in, want := range valid {
		ep, err := protocol.Endpoint{Alias: "a", Hostname: in, Port: 8529}.Validate()
		if assert.NoError(t, err, in) {
			assert.Equal(t, want, ep.Hostname, in)
		}
	}

	for _, in := range []string{"bad host", "-lead.example", "a..b", "a/b", "x:y"} {
		_, err := protocol.Endpoint{Alias: "a", Hostname: in, Port: 8529}.Validate()
		assert.ErrorIs(t, err, protocol.ErrInvalidEndpoint, in)
	}
}
