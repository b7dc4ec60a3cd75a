package arango_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/goarango/arango"
	"github.com/raysh454/goarango/internal/protocol"
)

func TestParseConnectionString(t *testing.T) {
	ep, err := arango.ParseConnectionString("alias=main;server=db.example.com;port=8530;secure=true;database=shop;user=root;password=p=w")
	require.NoError(t, err)
	assert.Equal(t, arango.Endpoint{
		Alias:    "main",
		Hostname: "db.example.com",
		Port:     8530,
		Secure:   true,
		Database: "shop",
		Username: "root",
		Password: "p=w",
	}, ep)
}

func TestParseConnectionString_UnderscoreHost(t *testing.T) {
	ep, err := arango.ParseConnectionString("alias=compose;server=arango_db;port=8529")
	require.NoError(t, err)
	assert.Equal(t, "arango_db", ep.Hostname)

	c, err := arango.New(ep)
	require.NoError(t, err)
	assert.Equal(t, "arango_db", c.Endpoint().Hostname)
	require.NoError(t, c.Close())
}

func TestParseConnectionString_Errors(t *testing.T) {
	for _, s := range []string{
		"alias=a;server=h;port=abc",
		"alias=a;server=h;port=1;secure=maybe",
		"alias=a;server=h;port=1;colour=blue",
		"alias=a;server=h;port=1;broken",
		"server=h;port=1",
		"alias=a;server=h;port=0",
	} {
		_, err := arango.ParseConnectionString(s)
		assert.Error(t, err, s)
	}

	_, err := arango.ParseConnectionString("server=h;port=1")
	assert.ErrorIs(t, err, protocol.ErrInvalidEndpoint)
}

func TestConnectionRegistry(t *testing.T) {
	ts := newTestServer(t)
	ep := ts.endpoint(t)
	ep.Alias = "registry-test"
	t.Cleanup(func() { arango.RemoveConnection(ep.Alias) })

	require.NoError(t, arango.AddConnection(ep, arango.WithHTTPClient(ts.Client())))
	assert.True(t, arango.HasConnection("registry-test"))
	assert.Contains(t, arango.Aliases(), "registry-test")
	assert.ErrorIs(t, arango.AddConnection(ep), arango.ErrDuplicateAlias)

	c, err := arango.Open("registry-test")
	require.NoError(t, err)
	defer c.Close()
	requireSuccess(t, c.Version(context.Background()))

	arango.RemoveConnection("registry-test")
	assert.False(t, arango.HasConnection("registry-test"))
	_, err = arango.Open("registry-test")
	assert.ErrorIs(t, err, arango.ErrUnknownAlias)
}

func TestAddConnectionString(t *testing.T) {
	t.Cleanup(func() { arango.RemoveConnection("from-string") })
	require.NoError(t, arango.AddConnectionString("alias=from-string;server=localhost;port=8529"))
	assert.True(t, arango.HasConnection("from-string"))
	assert.Error(t, arango.AddConnectionString("alias=;server=localhost;port=8529"))
}
