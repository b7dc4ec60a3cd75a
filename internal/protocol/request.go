package protocol

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Request is one HTTP call relative to a connection's base URI.
type Request struct {
	Method  string
	APIBase string
	// Path holds already escaped segments, each prefixed by "/".
	Path    string
	Query   url.Values
	Headers http.Header
	Body    []byte
}

// NewRequest builds a request for apiBase followed by the given path
// segments. Segments are escaped individually; empty segments are skipped.
func NewRequest(method, apiBase string, segments ...string) *Request {
	var b strings.Builder
	for _, s := range segments {
		if s == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return &Request{
		Method:  method,
		APIBase: strings.Trim(apiBase, "/"),
		Path:    b.String(),
		Query:   url.Values{},
		Headers: http.Header{},
	}
}

// RelativeURI is the request target without a leading slash.
func (r *Request) RelativeURI() string {
	uri := r.APIBase + r.Path
	if len(r.Query) > 0 {
		uri += "?" + r.Query.Encode()
	}
	return uri
}

func (r *Request) SetQuery(name, value string) {
	r.Query.Set(name, value)
}

func (r *Request) SetHeader(name, value string) {
	r.Headers.Set(name, value)
}

// TrySetQueryStringParameter copies name from params to the query string
// if it was set.
func (r *Request) TrySetQueryStringParameter(name string, params Parameters) bool {
	v, ok := params.Format(name)
	if !ok {
		return false
	}
	r.Query.Set(name, v)
	return true
}

// TrySetHeaderParameter copies name from params to the headers if it was set.
func (r *Request) TrySetHeaderParameter(name string, params Parameters) bool {
	v, ok := params.Format(name)
	if !ok {
		return false
	}
	r.Headers.Set(name, v)
	return true
}

// SetBody stores v as the request body. Strings, byte slices and
// json.RawMessage are taken verbatim; everything else is JSON encoded.
func (r *Request) SetBody(v any) error {
	switch t := v.(type) {
	case nil:
		r.Body = nil
	case string:
		r.Body = []byte(t)
	case []byte:
		r.Body = t
	case json.RawMessage:
		r.Body = t
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		r.Body = b
	}
	return nil
}
