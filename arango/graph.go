package arango

import (
	"context"
	"net/http"

	"github.com/raysh454/goarango/internal/protocol"
)

const (
	kindVertex = "vertex"
	kindEdge   = "edge"
)

// EdgeDefinition relates an edge collection to its vertex collections.
type EdgeDefinition struct {
	Collection string   `json:"collection"`
	From       []string `json:"from"`
	To         []string `json:"to"`
}

// Graph manages named graphs and their vertices and edges.
type Graph struct {
	conn   *protocol.Connection
	params protocol.Parameters
}

func (g *Graph) WaitForSync(v bool) *Graph {
	g.params.Bool(protocol.ParamWaitForSync, v)
	return g
}

// IfMatch makes the next call conditional on the document revision.
func (g *Graph) IfMatch(rev string) *Graph {
	g.params.String(protocol.ParamIfMatch, rev)
	return g
}

func (g *Graph) IfNoneMatch(rev string) *Graph {
	g.params.String(protocol.ParamIfNoneMatch, rev)
	return g
}

func (g *Graph) KeepNull(v bool) *Graph {
	g.params.Bool(protocol.ParamKeepNull, v)
	return g
}

func (g *Graph) ReturnNew(v bool) *Graph {
	g.params.Bool(protocol.ParamReturnNew, v)
	return g
}

func (g *Graph) ReturnOld(v bool) *Graph {
	g.params.Bool(protocol.ParamReturnOld, v)
	return g
}

func (g *Graph) JournalSize(n int64) *Graph {
	g.params.Int64(protocol.ParamJournalSize, n)
	return g
}

func (g *Graph) DoCompact(v bool) *Graph {
	g.params.Bool(protocol.ParamDoCompact, v)
	return g
}

func (g *Graph) IsSystem(v bool) *Graph {
	g.params.Bool(protocol.ParamIsSystem, v)
	return g
}

func (g *Graph) IsVolatile(v bool) *Graph {
	g.params.Bool(protocol.ParamIsVolatile, v)
	return g
}

// DropCollections makes Delete and the collection removal calls also drop
// collections no other graph uses.
func (g *Graph) DropCollections(v bool) *Graph {
	g.params.Bool(protocol.ParamDropCollections, v)
	return g
}

func (g *Graph) EdgeDefinitions(defs ...EdgeDefinition) *Graph {
	g.params.Set(protocol.ParamEdgeDefinitions, defs)
	return g
}

func (g *Graph) OrphanCollections(names ...string) *Graph {
	g.params.List(protocol.ParamOrphanCollections, names)
	return g
}

// Create creates graph name with the edge definitions and orphan
// collections set on the builder.
func (g *Graph) Create(ctx context.Context, name string) *Result[Document] {
	defer g.params.Clear()

	body := Document{protocol.ParamName: name}
	if v, ok := g.params.Get(protocol.ParamEdgeDefinitions); ok {
		body[protocol.ParamEdgeDefinitions] = v
	}
	if v, ok := g.params.Get(protocol.ParamOrphanCollections); ok {
		body[protocol.ParamOrphanCollections] = v
	}
	opts := Document{}
	for _, p := range []string{protocol.ParamJournalSize, protocol.ParamDoCompact, protocol.ParamIsSystem, protocol.ParamIsVolatile} {
		if v, ok := g.params.Get(p); ok {
			opts[p] = v
		}
	}
	if len(opts) > 0 {
		body["options"] = opts
	}

	req := protocol.NewRequest(http.MethodPost, protocol.APIGraph)
	if err := req.SetBody(body); err != nil {
		return failed[Document](err)
	}
	req.TrySetQueryStringParameter(protocol.ParamWaitForSync, g.params)
	return send[Document](ctx, g.conn, req, expectModified)
}

func (g *Graph) Get(ctx context.Context, name string) *Result[Document] {
	defer g.params.Clear()
	return send[Document](ctx, g.conn, protocol.NewRequest(http.MethodGet, protocol.APIGraph, name), expectOK)
}

// List returns the server's {"graphs": [...]} document.
func (g *Graph) List(ctx context.Context) *Result[Document] {
	defer g.params.Clear()
	return send[Document](ctx, g.conn, protocol.NewRequest(http.MethodGet, protocol.APIGraph), expectOK)
}

func (g *Graph) Delete(ctx context.Context, name string) *Result[Document] {
	defer g.params.Clear()
	req := protocol.NewRequest(http.MethodDelete, protocol.APIGraph, name)
	req.TrySetQueryStringParameter(protocol.ParamDropCollections, g.params)
	return send[Document](ctx, g.conn, req, expectModified)
}

func (g *Graph) ListVertexCollections(ctx context.Context, graph string) *Result[Document] {
	defer g.params.Clear()
	req := protocol.NewRequest(http.MethodGet, protocol.APIGraph, graph, kindVertex)
	return send[Document](ctx, g.conn, req, expectOK)
}

func (g *Graph) CreateVertexCollection(ctx context.Context, graph, collection string) *Result[Document] {
	defer g.params.Clear()
	req := protocol.NewRequest(http.MethodPost, protocol.APIGraph, graph, kindVertex)
	if err := req.SetBody(Document{protocol.ParamCollection: collection}); err != nil {
		return failed[Document](err)
	}
	return send[Document](ctx, g.conn, req, expectModified)
}

func (g *Graph) DeleteVertexCollection(ctx context.Context, graph, collection string) *Result[Document] {
	defer g.params.Clear()
	req := protocol.NewRequest(http.MethodDelete, protocol.APIGraph, graph, kindVertex, collection)
	if v, ok := g.params.Format(protocol.ParamDropCollections); ok {
		req.SetQuery(protocol.ParamDropCollection, v)
	}
	return send[Document](ctx, g.conn, req, expectModified)
}

func (g *Graph) ListEdgeDefinitions(ctx context.Context, graph string) *Result[Document] {
	defer g.params.Clear()
	req := protocol.NewRequest(http.MethodGet, protocol.APIGraph, graph, kindEdge)
	return send[Document](ctx, g.conn, req, expectOK)
}

func (g *Graph) CreateEdgeDefinition(ctx context.Context, graph, definition string, from, to []string) *Result[Document] {
	defer g.params.Clear()
	req := protocol.NewRequest(http.MethodPost, protocol.APIGraph, graph, kindEdge)
	if err := req.SetBody(EdgeDefinition{Collection: definition, From: from, To: to}); err != nil {
		return failed[Document](err)
	}
	return send[Document](ctx, g.conn, req, expectModified)
}

func (g *Graph) ReplaceEdgeDefinition(ctx context.Context, graph, definition string, from, to []string) *Result[Document] {
	defer g.params.Clear()
	req := protocol.NewRequest(http.MethodPut, protocol.APIGraph, graph, kindEdge, definition)
	if err := req.SetBody(EdgeDefinition{Collection: definition, From: from, To: to}); err != nil {
		return failed[Document](err)
	}
	return send[Document](ctx, g.conn, req, expectModified)
}

func (g *Graph) DeleteEdgeDefinition(ctx context.Context, graph, definition string) *Result[Document] {
	defer g.params.Clear()
	req := protocol.NewRequest(http.MethodDelete, protocol.APIGraph, graph, kindEdge, definition)
	if v, ok := g.params.Format(protocol.ParamDropCollections); ok {
		req.SetQuery(protocol.ParamDropCollection, v)
	}
	return send[Document](ctx, g.conn, req, expectModified)
}

// CreateVertex stores doc in collection. The created vertex is under the
// "vertex" attribute of Value; "new" holds the full document with ReturnNew.
func (g *Graph) CreateVertex(ctx context.Context, graph, collection string, doc any) *Result[Document] {
	defer g.params.Clear()
	return g.createElement(ctx, kindVertex, graph, collection, doc)
}

// GetVertex reads one vertex. id is a key or a handle in collection.
// Use Result.DecodeField("vertex", &v) to read it into a typed value.
func (g *Graph) GetVertex(ctx context.Context, graph, collection, id string) *Result[Document] {
	defer g.params.Clear()
	return g.getElement(ctx, kindVertex, graph, collection, id)
}

func (g *Graph) UpdateVertex(ctx context.Context, graph, collection, id string, patch any) *Result[Document] {
	defer g.params.Clear()
	return g.writeElement(ctx, http.MethodPatch, kindVertex, graph, collection, id, patch)
}

func (g *Graph) ReplaceVertex(ctx context.Context, graph, collection, id string, doc any) *Result[Document] {
	defer g.params.Clear()
	return g.writeElement(ctx, http.MethodPut, kindVertex, graph, collection, id, doc)
}

func (g *Graph) DeleteVertex(ctx context.Context, graph, collection, id string) *Result[Document] {
	defer g.params.Clear()
	return g.deleteElement(ctx, kindVertex, graph, collection, id)
}

// CreateEdge stores doc in the edge collection with _from and _to set to the
// given vertex handles.
func (g *Graph) CreateEdge(ctx context.Context, graph, collection, from, to string, doc any) *Result[Document] {
	defer g.params.Clear()
	edge, err := ToDocument(doc)
	if err != nil {
		return failed[Document](err)
	}
	edge["_from"] = from
	edge["_to"] = to
	return g.createElement(ctx, kindEdge, graph, collection, edge)
}

func (g *Graph) GetEdge(ctx context.Context, graph, collection, id string) *Result[Document] {
	defer g.params.Clear()
	return g.getElement(ctx, kindEdge, graph, collection, id)
}

func (g *Graph) UpdateEdge(ctx context.Context, graph, collection, id string, patch any) *Result[Document] {
	defer g.params.Clear()
	return g.writeElement(ctx, http.MethodPatch, kindEdge, graph, collection, id, patch)
}

func (g *Graph) ReplaceEdge(ctx context.Context, graph, collection, id string, doc any) *Result[Document] {
	defer g.params.Clear()
	return g.writeElement(ctx, http.MethodPut, kindEdge, graph, collection, id, doc)
}

func (g *Graph) DeleteEdge(ctx context.Context, graph, collection, id string) *Result[Document] {
	defer g.params.Clear()
	return g.deleteElement(ctx, kindEdge, graph, collection, id)
}

func (g *Graph) createElement(ctx context.Context, kind, graph, collection string, doc any) *Result[Document] {
	req := protocol.NewRequest(http.MethodPost, protocol.APIGraph, graph, kind, collection)
	if err := req.SetBody(doc); err != nil {
		return failed[Document](err)
	}
	req.TrySetQueryStringParameter(protocol.ParamWaitForSync, g.params)
	req.TrySetQueryStringParameter(protocol.ParamReturnNew, g.params)
	return send[Document](ctx, g.conn, req, expectCreated)
}

func (g *Graph) getElement(ctx context.Context, kind, graph, collection, id string) *Result[Document] {
	key, err := keyIn(collection, id)
	if err != nil {
		return failed[Document](err)
	}
	req := protocol.NewRequest(http.MethodGet, protocol.APIGraph, graph, kind, collection, key)
	req.TrySetHeaderParameter(protocol.ParamIfMatch, g.params)
	req.TrySetHeaderParameter(protocol.ParamIfNoneMatch, g.params)
	return send[Document](ctx, g.conn, req, expectOKOr412)
}

func (g *Graph) writeElement(ctx context.Context, method, kind, graph, collection, id string, doc any) *Result[Document] {
	key, err := keyIn(collection, id)
	if err != nil {
		return failed[Document](err)
	}
	req := protocol.NewRequest(method, protocol.APIGraph, graph, kind, collection, key)
	if err := req.SetBody(doc); err != nil {
		return failed[Document](err)
	}
	req.TrySetQueryStringParameter(protocol.ParamWaitForSync, g.params)
	if method == http.MethodPatch {
		req.TrySetQueryStringParameter(protocol.ParamKeepNull, g.params)
	}
	req.TrySetQueryStringParameter(protocol.ParamReturnNew, g.params)
	req.TrySetQueryStringParameter(protocol.ParamReturnOld, g.params)
	req.TrySetHeaderParameter(protocol.ParamIfMatch, g.params)
	return send[Document](ctx, g.conn, req, expectModifiedOr412)
}

func (g *Graph) deleteElement(ctx context.Context, kind, graph, collection, id string) *Result[Document] {
	key, err := keyIn(collection, id)
	if err != nil {
		return failed[Document](err)
	}
	req := protocol.NewRequest(http.MethodDelete, protocol.APIGraph, graph, kind, collection, key)
	req.TrySetQueryStringParameter(protocol.ParamWaitForSync, g.params)
	req.TrySetQueryStringParameter(protocol.ParamReturnOld, g.params)
	req.TrySetHeaderParameter(protocol.ParamIfMatch, g.params)
	return send[Document](ctx, g.conn, req, expectRemovedOr412)
}
