package arango

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/raysh454/goarango/internal/protocol"
)

var ErrEmptyQuery = errors.New("empty AQL query")

// Query runs AQL through server-side cursors.
type Query struct {
	conn   *protocol.Connection
	params protocol.Parameters
}

func (q *Query) Aql(text string) *Query {
	q.params.String(protocol.ParamQuery, text)
	return q
}

func (q *Query) BindVar(name string, value any) *Query {
	vars, _ := q.params[protocol.ParamBindVars].(map[string]any)
	if vars == nil {
		vars = map[string]any{}
		q.params.Set(protocol.ParamBindVars, vars)
	}
	vars[name] = value
	return q
}

// Count asks the server to report the total number of results.
func (q *Query) Count(v bool) *Query {
	q.params.Bool(protocol.ParamCount, v)
	return q
}

func (q *Query) BatchSize(n int) *Query {
	q.params.Set(protocol.ParamBatchSize, n)
	return q
}

// TTL keeps an idle cursor alive for the given number of seconds.
func (q *Query) TTL(seconds int) *Query {
	q.params.Set(protocol.ParamTTL, seconds)
	return q
}

type cursorBatch struct {
	ID      string            `json:"id"`
	Result  []json.RawMessage `json:"result"`
	HasMore bool              `json:"hasMore"`
	Count   *int              `json:"count"`
}

// Execute runs the query and follows the cursor until it is exhausted.
// Value is the concatenation of every batch; Decode reads it into a typed
// slice. A failing batch ends the walk with that batch's status and Error.
func (q *Query) Execute(ctx context.Context) *Result[[]any] {
	defer q.params.Clear()

	text, _ := q.params.Format(protocol.ParamQuery)
	if text == "" {
		return failed[[]any](ErrEmptyQuery)
	}
	body := Document{protocol.ParamQuery: text}
	for _, p := range []string{protocol.ParamBindVars, protocol.ParamCount, protocol.ParamBatchSize, protocol.ParamTTL} {
		if v, ok := q.params.Get(p); ok {
			body[p] = v
		}
	}

	req := protocol.NewRequest(http.MethodPost, protocol.APICursor)
	if err := req.SetBody(body); err != nil {
		return failed[[]any](err)
	}
	batch := send[cursorBatch](ctx, q.conn, req, expect{codes: []int{http.StatusCreated}})

	var items []json.RawMessage
	for {
		if !batch.Success {
			return &Result[[]any]{StatusCode: batch.StatusCode, Headers: batch.Headers, Error: batch.Error, raw: batch.raw}
		}
		items = append(items, batch.Value.Result...)
		if !batch.Value.HasMore || batch.Value.ID == "" {
			break
		}
		next := protocol.NewRequest(http.MethodPut, protocol.APICursor, batch.Value.ID)
		batch = send[cursorBatch](ctx, q.conn, next, expectOK)
	}

	if items == nil {
		items = []json.RawMessage{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return failed[[]any](err)
	}
	values := make([]any, 0, len(items))
	if err := json.Unmarshal(raw, &values); err != nil {
		return failed[[]any](err)
	}
	return &Result[[]any]{
		Success:    true,
		StatusCode: batch.StatusCode,
		Value:      values,
		Headers:    batch.Headers,
		raw:        raw,
	}
}

// DeleteCursor releases a cursor the caller did not exhaust.
func (q *Query) DeleteCursor(ctx context.Context, id string) *Result[Document] {
	defer q.params.Clear()
	req := protocol.NewRequest(http.MethodDelete, protocol.APICursor, id)
	return send[Document](ctx, q.conn, req, expect{codes: []int{http.StatusAccepted}})
}
