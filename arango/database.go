package arango

import (
	"context"
	"net/http"

	"github.com/raysh454/goarango/internal/protocol"
)

// Databases manages databases. Create, List and Drop must run against the
// _system database; the others use the client's database.
type Databases struct {
	conn *protocol.Connection
}

// Create creates database name. Value is the server's "result" flag.
func (d *Databases) Create(ctx context.Context, name string) *Result[bool] {
	req := protocol.NewRequest(http.MethodPost, protocol.APIDatabase)
	if err := req.SetBody(Document{protocol.ParamName: name}); err != nil {
		return failed[bool](err)
	}
	return send[bool](ctx, d.conn, req, expect{codes: []int{http.StatusCreated}, field: "result"})
}

// Current describes the database the client is bound to.
func (d *Databases) Current(ctx context.Context) *Result[Document] {
	req := protocol.NewRequest(http.MethodGet, protocol.APIDatabase, "current")
	return send[Document](ctx, d.conn, req, expectOK.result("result"))
}

func (d *Databases) List(ctx context.Context) *Result[[]string] {
	return send[[]string](ctx, d.conn, protocol.NewRequest(http.MethodGet, protocol.APIDatabase), expectOK.result("result"))
}

// ListAccessible lists the databases the current user may access.
func (d *Databases) ListAccessible(ctx context.Context) *Result[[]string] {
	req := protocol.NewRequest(http.MethodGet, protocol.APIDatabase, "user")
	return send[[]string](ctx, d.conn, req, expectOK.result("result"))
}

func (d *Databases) Drop(ctx context.Context, name string) *Result[bool] {
	req := protocol.NewRequest(http.MethodDelete, protocol.APIDatabase, name)
	return send[bool](ctx, d.conn, req, expectOK.result("result"))
}
