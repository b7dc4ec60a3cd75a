package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
)

// BodyType is the coarse shape of a response body.
type BodyType int

const (
	BodyNull BodyType = iota
	BodyDocument
	BodyList
	BodyText
)

func (t BodyType) String() string {
	switch t {
	case BodyDocument:
		return "document"
	case BodyList:
		return "list"
	case BodyText:
		return "text"
	default:
		return "null"
	}
}

// Response is the outcome of one exchange with the server.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	BodyType   BodyType
	Error      *AError
}

// NewResponse classifies a raw HTTP answer. Non-2xx statuses always carry an
// Error: a structured one when the body is an ArangoDB error document,
// a protocol error otherwise.
func NewResponse(status int, headers http.Header, body []byte) *Response {
	r := &Response{
		StatusCode: status,
		Headers:    headers,
		Body:       body,
		BodyType:   detectBodyType(body),
	}
	if r.IsSuccess() {
		return r
	}

	if r.BodyType == BodyDocument {
		var eb errorBody
		if err := json.Unmarshal(body, &eb); err == nil && eb.Error {
			code := eb.Code
			if code == 0 {
				code = status
			}
			r.Error = NewArangoError(code, eb.ErrorNum, eb.ErrorMessage)
			return r
		}
	}
	r.Error = NewProtocolError(status, nil)
	return r
}

func detectBodyType(body []byte) BodyType {
	trimmed := bytes.TrimSpace(body)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		return BodyNull
	case trimmed[0] == '{':
		return BodyDocument
	case trimmed[0] == '[':
		return BodyList
	default:
		return BodyText
	}
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ParseBody decodes the JSON body into v.
func (r *Response) ParseBody(v any) error {
	if r.BodyType == BodyNull {
		return errors.New("protocol: empty response body")
	}
	return json.Unmarshal(r.Body, v)
}
