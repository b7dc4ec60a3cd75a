package arango

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/raysh454/goarango/internal/protocol"
)

// Documents reads and writes documents by handle ("collection/key").
type Documents struct {
	conn   *protocol.Connection
	params protocol.Parameters
}

func (d *Documents) WaitForSync(v bool) *Documents {
	d.params.Bool(protocol.ParamWaitForSync, v)
	return d
}

func (d *Documents) ReturnNew(v bool) *Documents {
	d.params.Bool(protocol.ParamReturnNew, v)
	return d
}

func (d *Documents) ReturnOld(v bool) *Documents {
	d.params.Bool(protocol.ParamReturnOld, v)
	return d
}

func (d *Documents) KeepNull(v bool) *Documents {
	d.params.Bool(protocol.ParamKeepNull, v)
	return d
}

func (d *Documents) MergeObjects(v bool) *Documents {
	d.params.Bool(protocol.ParamMergeObjects, v)
	return d
}

func (d *Documents) Silent(v bool) *Documents {
	d.params.Bool(protocol.ParamSilent, v)
	return d
}

func (d *Documents) IfMatch(rev string) *Documents {
	d.params.String(protocol.ParamIfMatch, rev)
	return d
}

// IfNoneMatch makes Get and Check answer 304 when rev is still current.
func (d *Documents) IfNoneMatch(rev string) *Documents {
	d.params.String(protocol.ParamIfNoneMatch, rev)
	return d
}

// Create stores doc in collection. Value holds _id, _key and _rev.
func (d *Documents) Create(ctx context.Context, collection string, doc any) *Result[Document] {
	defer d.params.Clear()
	req := protocol.NewRequest(http.MethodPost, protocol.APIDocument, collection)
	if err := req.SetBody(doc); err != nil {
		return failed[Document](err)
	}
	req.TrySetQueryStringParameter(protocol.ParamWaitForSync, d.params)
	req.TrySetQueryStringParameter(protocol.ParamReturnNew, d.params)
	req.TrySetQueryStringParameter(protocol.ParamSilent, d.params)
	return send[Document](ctx, d.conn, req, expectCreated)
}

func (d *Documents) Get(ctx context.Context, id string) *Result[Document] {
	defer d.params.Clear()
	req, err := d.handleRequest(http.MethodGet, id)
	if err != nil {
		return failed[Document](err)
	}
	req.TrySetHeaderParameter(protocol.ParamIfMatch, d.params)
	req.TrySetHeaderParameter(protocol.ParamIfNoneMatch, d.params)
	return send[Document](ctx, d.conn, req, expectOKOr412)
}

// Check asks for the document's headers only. Value is the current revision.
func (d *Documents) Check(ctx context.Context, id string) *Result[string] {
	defer d.params.Clear()
	req, err := d.handleRequest(http.MethodHead, id)
	if err != nil {
		return failed[string](err)
	}
	req.TrySetHeaderParameter(protocol.ParamIfMatch, d.params)
	req.TrySetHeaderParameter(protocol.ParamIfNoneMatch, d.params)

	resp, err := d.conn.Send(ctx, req)
	if err != nil {
		return failed[string](err)
	}
	res := &Result[string]{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Error:      resp.Error,
	}
	rev := strings.Trim(resp.Headers.Get("Etag"), `"`)
	switch resp.StatusCode {
	case http.StatusOK:
		if rev == "" {
			res.Error = protocol.NewProtocolError(resp.StatusCode, ErrUnexpectedBody)
			return res
		}
		res.Value = rev
		res.Success = true
	case http.StatusPreconditionFailed:
		res.Value = rev
	}
	if !res.Success && res.Error == nil {
		res.Error = protocol.NewProtocolError(resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	return res
}

// Update patches the document with the attributes of patch.
func (d *Documents) Update(ctx context.Context, id string, patch any) *Result[Document] {
	defer d.params.Clear()
	req, err := d.handleRequest(http.MethodPatch, id)
	if err != nil {
		return failed[Document](err)
	}
	if err := req.SetBody(patch); err != nil {
		return failed[Document](err)
	}
	req.TrySetQueryStringParameter(protocol.ParamWaitForSync, d.params)
	req.TrySetQueryStringParameter(protocol.ParamKeepNull, d.params)
	req.TrySetQueryStringParameter(protocol.ParamMergeObjects, d.params)
	req.TrySetQueryStringParameter(protocol.ParamReturnNew, d.params)
	req.TrySetQueryStringParameter(protocol.ParamReturnOld, d.params)
	req.TrySetQueryStringParameter(protocol.ParamSilent, d.params)
	req.TrySetHeaderParameter(protocol.ParamIfMatch, d.params)
	return send[Document](ctx, d.conn, req, expectCreatedOr412)
}

func (d *Documents) Replace(ctx context.Context, id string, doc any) *Result[Document] {
	defer d.params.Clear()
	req, err := d.handleRequest(http.MethodPut, id)
	if err != nil {
		return failed[Document](err)
	}
	if err := req.SetBody(doc); err != nil {
		return failed[Document](err)
	}
	req.TrySetQueryStringParameter(protocol.ParamWaitForSync, d.params)
	req.TrySetQueryStringParameter(protocol.ParamReturnNew, d.params)
	req.TrySetQueryStringParameter(protocol.ParamReturnOld, d.params)
	req.TrySetQueryStringParameter(protocol.ParamSilent, d.params)
	req.TrySetHeaderParameter(protocol.ParamIfMatch, d.params)
	return send[Document](ctx, d.conn, req, expectCreatedOr412)
}

func (d *Documents) Delete(ctx context.Context, id string) *Result[Document] {
	defer d.params.Clear()
	req, err := d.handleRequest(http.MethodDelete, id)
	if err != nil {
		return failed[Document](err)
	}
	req.TrySetQueryStringParameter(protocol.ParamWaitForSync, d.params)
	req.TrySetQueryStringParameter(protocol.ParamReturnOld, d.params)
	req.TrySetQueryStringParameter(protocol.ParamSilent, d.params)
	req.TrySetHeaderParameter(protocol.ParamIfMatch, d.params)
	return send[Document](ctx, d.conn, req, expectRemovedOr412)
}

func (d *Documents) handleRequest(method, id string) (*protocol.Request, error) {
	collection, key, err := splitHandle(id)
	if err != nil {
		return nil, err
	}
	return protocol.NewRequest(method, protocol.APIDocument, collection, key), nil
}
