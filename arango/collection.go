package arango

import (
	"context"
	"net/http"

	"github.com/raysh454/goarango/internal/protocol"
)

// CollectionType is the server's numeric collection type.
type CollectionType int

const (
	DocumentCollection CollectionType = 2
	EdgeCollection     CollectionType = 3
)

// Collections manages collections of the current database.
type Collections struct {
	conn   *protocol.Connection
	params protocol.Parameters
}

func (c *Collections) Type(t CollectionType) *Collections {
	c.params.Set(protocol.ParamType, int(t))
	return c
}

func (c *Collections) WaitForSync(v bool) *Collections {
	c.params.Bool(protocol.ParamWaitForSync, v)
	return c
}

func (c *Collections) JournalSize(n int64) *Collections {
	c.params.Int64(protocol.ParamJournalSize, n)
	return c
}

func (c *Collections) DoCompact(v bool) *Collections {
	c.params.Bool(protocol.ParamDoCompact, v)
	return c
}

func (c *Collections) IsSystem(v bool) *Collections {
	c.params.Bool(protocol.ParamIsSystem, v)
	return c
}

func (c *Collections) IsVolatile(v bool) *Collections {
	c.params.Bool(protocol.ParamIsVolatile, v)
	return c
}

// ExcludeSystem hides system collections from List.
func (c *Collections) ExcludeSystem(v bool) *Collections {
	c.params.Bool(protocol.ParamExcludeSystem, v)
	return c
}

// Create creates collection name. Builder parameters other than
// ExcludeSystem travel in the request body.
func (c *Collections) Create(ctx context.Context, name string) *Result[Document] {
	defer c.params.Clear()
	body := Document{protocol.ParamName: name}
	for _, p := range []string{
		protocol.ParamType, protocol.ParamWaitForSync, protocol.ParamJournalSize,
		protocol.ParamDoCompact, protocol.ParamIsSystem, protocol.ParamIsVolatile,
	} {
		if v, ok := c.params.Get(p); ok {
			body[p] = v
		}
	}
	req := protocol.NewRequest(http.MethodPost, protocol.APICollection)
	if err := req.SetBody(body); err != nil {
		return failed[Document](err)
	}
	return send[Document](ctx, c.conn, req, expectOK)
}

func (c *Collections) Get(ctx context.Context, name string) *Result[Document] {
	defer c.params.Clear()
	return send[Document](ctx, c.conn, protocol.NewRequest(http.MethodGet, protocol.APICollection, name), expectOK)
}

func (c *Collections) GetProperties(ctx context.Context, name string) *Result[Document] {
	defer c.params.Clear()
	req := protocol.NewRequest(http.MethodGet, protocol.APICollection, name, "properties")
	return send[Document](ctx, c.conn, req, expectOK)
}

func (c *Collections) GetCount(ctx context.Context, name string) *Result[Document] {
	defer c.params.Clear()
	req := protocol.NewRequest(http.MethodGet, protocol.APICollection, name, "count")
	return send[Document](ctx, c.conn, req, expectOK)
}

// List returns the collection descriptions under the "result" attribute.
func (c *Collections) List(ctx context.Context) *Result[[]Document] {
	defer c.params.Clear()
	req := protocol.NewRequest(http.MethodGet, protocol.APICollection)
	req.TrySetQueryStringParameter(protocol.ParamExcludeSystem, c.params)
	return send[[]Document](ctx, c.conn, req, expectOK.result("result"))
}

func (c *Collections) Truncate(ctx context.Context, name string) *Result[Document] {
	defer c.params.Clear()
	req := protocol.NewRequest(http.MethodPut, protocol.APICollection, name, "truncate")
	return send[Document](ctx, c.conn, req, expectOK)
}

func (c *Collections) Delete(ctx context.Context, name string) *Result[Document] {
	defer c.params.Clear()
	req := protocol.NewRequest(http.MethodDelete, protocol.APICollection, name)
	req.TrySetQueryStringParameter(protocol.ParamIsSystem, c.params)
	return send[Document](ctx, c.conn, req, expectOK)
}
