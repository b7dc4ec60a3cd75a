package arango

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/raysh454/goarango/internal/protocol"
)

// Error classifies a failed call. Messages start with "ArangoDB error: " when
// the server sent a structured error body and "Protocol error: " otherwise.
type Error = protocol.AError

// Document is the generic JSON object form of a stored document.
type Document = map[string]any

var (
	ErrInvalidDocumentID = errors.New("invalid document id format")
	ErrUnexpectedBody    = errors.New("unexpected response body")
)

// Result is the outcome of one operation.
type Result[T any] struct {
	// Success is true only when the status matched the operation's success
	// codes and the body decoded to a value.
	Success    bool
	StatusCode int
	Value      T
	Error      *Error
	Headers    http.Header

	raw []byte
}

// Err returns Error as a Go error, or nil on success.
func (r *Result[T]) Err() error {
	if r.Error != nil {
		return r.Error
	}
	if !r.Success {
		return protocol.NewProtocolError(r.StatusCode, ErrUnexpectedBody)
	}
	return nil
}

// Raw is the undecoded response body.
func (r *Result[T]) Raw() []byte { return r.raw }

// Decode unmarshals the whole response body into v.
func (r *Result[T]) Decode(v any) error {
	if len(r.raw) == 0 {
		return ErrUnexpectedBody
	}
	return json.Unmarshal(r.raw, v)
}

// DecodeField unmarshals one top-level attribute of the response body into v,
// for example "vertex" or "graph".
func (r *Result[T]) DecodeField(key string, v any) error {
	var fields map[string]json.RawMessage
	if err := r.Decode(&fields); err != nil {
		return err
	}
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("%w: no attribute %q", ErrUnexpectedBody, key)
	}
	return json.Unmarshal(f, v)
}

// expect lists the statuses an operation treats as success and whether a
// 412 answer still carries the current document.
type expect struct {
	codes      []int
	valueOn412 bool
	// field selects a top-level attribute as Value instead of the whole body.
	field string
}

var (
	expectOK            = expect{codes: []int{http.StatusOK}}
	expectOKOr412       = expect{codes: []int{http.StatusOK}, valueOn412: true}
	expectCreated       = expect{codes: []int{http.StatusCreated, http.StatusAccepted}}
	expectCreatedOr412  = expect{codes: []int{http.StatusCreated, http.StatusAccepted}, valueOn412: true}
	expectModified      = expect{codes: []int{http.StatusOK, http.StatusCreated, http.StatusAccepted}}
	expectModifiedOr412 = expect{codes: []int{http.StatusOK, http.StatusCreated, http.StatusAccepted}, valueOn412: true}
	expectRemovedOr412  = expect{codes: []int{http.StatusOK, http.StatusAccepted}, valueOn412: true}
)

func (e expect) result(f string) expect {
	e.field = f
	return e
}

// failed builds the result of a call that never produced an HTTP answer.
func failed[T any](err error) *Result[T] {
	return &Result[T]{Error: protocol.NewProtocolError(0, err)}
}

// interpret maps one response onto a Result according to exp.
func interpret[T any](resp *protocol.Response, exp expect) *Result[T] {
	res := &Result[T]{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Error:      resp.Error,
		raw:        resp.Body,
	}

	switch {
	case slices.Contains(exp.codes, resp.StatusCode):
		v, err := decodeValue[T](resp, exp.field)
		if err != nil {
			res.Error = protocol.NewProtocolError(resp.StatusCode, err)
			return res
		}
		res.Value = v
		res.Success = true
	case resp.StatusCode == http.StatusPreconditionFailed && exp.valueOn412:
		if v, err := decodeValue[T](resp, exp.field); err == nil {
			res.Value = v
		}
	}

	if !res.Success && res.Error == nil {
		res.Error = protocol.NewProtocolError(resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	return res
}

func decodeValue[T any](resp *protocol.Response, field string) (T, error) {
	var v T
	if resp.BodyType == protocol.BodyNull {
		return v, ErrUnexpectedBody
	}
	if field == "" {
		if err := resp.ParseBody(&v); err != nil {
			return v, fmt.Errorf("%w: %v", ErrUnexpectedBody, err)
		}
		return v, nil
	}

	var fields map[string]json.RawMessage
	if err := resp.ParseBody(&fields); err != nil {
		return v, fmt.Errorf("%w: %v", ErrUnexpectedBody, err)
	}
	raw, ok := fields[field]
	if !ok {
		return v, fmt.Errorf("%w: no attribute %q", ErrUnexpectedBody, field)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrUnexpectedBody, err)
	}
	return v, nil
}
