package arango_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raysh454/goarango/arango"
	"github.com/raysh454/goarango/internal/protocol"
)

func TestQuery_FollowsCursorBatches(t *testing.T) {
	c, ts := newTestClient(t)
	before := ts.requests.Load()

	res := c.Query().Aql("FOR i IN 1..7 RETURN i").BatchSize(3).Count(true).Execute(context.Background())
	requireSuccess(t, res)
	assert.Len(t, res.Value, 7)
	assert.Equal(t, http.StatusOK, res.StatusCode, "last batch came from the cursor")
	assert.Equal(t, int64(3), ts.requests.Load()-before, "one POST and two PUTs")

	var nums []int
	require.NoError(t, res.Decode(&nums))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, nums)
}

func TestQuery_SingleBatchAndBindVars(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	requireSuccess(t, c.Collection().Create(ctx, "people"))
	requireSuccess(t, c.Document().Create(ctx, "people", person{Name: "Alice", Age: 30}))
	requireSuccess(t, c.Document().Create(ctx, "people", person{Name: "Bob", Age: 25}))

	res := c.Query().
		Aql("FOR p IN @@coll FILTER p.age == @age RETURN p").
		BindVar("@coll", "people").
		BindVar("age", 30).
		Execute(ctx)
	requireSuccess(t, res)
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	var people []person
	require.NoError(t, res.Decode(&people))
	require.Len(t, people, 1)
	assert.Equal(t, "Alice", people[0].Name)
}

func TestQuery_Errors(t *testing.T) {
	c, ts := newTestClient(t)
	ctx := context.Background()

	before := ts.requests.Load()
	empty := c.Query().Execute(ctx)
	assert.False(t, empty.Success)
	assert.ErrorIs(t, empty.Error, arango.ErrEmptyQuery)
	assert.Equal(t, before, ts.requests.Load())

	bad := c.Query().Aql("RETURN @nope").Execute(ctx)
	assert.False(t, bad.Success)
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
	assert.Equal(t, protocol.ErrNumQueryBindMissing, bad.Error.Number)

	gone := c.Query().DeleteCursor(ctx, "does-not-exist")
	assert.False(t, gone.Success)
	assert.Equal(t, protocol.ErrNumCursorNotFound, gone.Error.Number)
}

// openCursor starts a cursor directly so it is left with pending results.
func openCursor(t *testing.T, ts *testServer) string {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/_api/cursor",
		strings.NewReader(`{"query":"FOR i IN 1..4 RETURN i","batchSize":2}`))
	require.NoError(t, err)
	req.SetBasicAuth(testUser, testPassword)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var batch struct {
		ID      string `json:"id"`
		HasMore bool   `json:"hasMore"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&batch))
	require.True(t, batch.HasMore)
	return batch.ID
}

func TestQuery_DeleteCursor(t *testing.T) {
	c, ts := newTestClient(t)
	id := openCursor(t, ts)

	res := c.Query().DeleteCursor(context.Background(), id)
	requireSuccess(t, res)
	assert.Equal(t, http.StatusAccepted, res.StatusCode)

	again := c.Query().DeleteCursor(context.Background(), id)
	assert.False(t, again.Success)
	assert.Equal(t, http.StatusNotFound, again.StatusCode)
}

func TestQuery_FailingBatchEndsWalk(t *testing.T) {
	var puts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/_api/cursor":
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"result":[1,2],"hasMore":true,"id":"c1","error":false,"code":201}`)
		case r.Method == http.MethodPut && r.URL.Path == "/_api/cursor/c1":
			puts.Add(1)
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":true,"code":404,"errorNum":1600,"errorMessage":"cursor not found"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	c, err := arango.New(endpointFor(t, ts.URL), arango.WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	defer c.Close()

	res := c.Query().Aql("FOR i IN 1..4 RETURN i").BatchSize(2).Execute(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	require.NotNil(t, res.Error)
	assert.Equal(t, protocol.ErrNumCursorNotFound, res.Error.Number)
	assert.Contains(t, res.Error.Error(), "ArangoDB error: cursor not found")
	assert.Nil(t, res.Value)
	assert.Equal(t, int32(1), puts.Load())
}
