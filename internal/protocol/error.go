package protocol

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNilRequest      = errors.New("protocol: nil request")
	ErrInvalidEndpoint = errors.New("protocol: invalid endpoint")
)

const (
	arangoErrorPrefix   = "ArangoDB error: "
	protocolErrorPrefix = "Protocol error: "
)

// AError classifies a failed call. Either the server answered with a
// structured error body (Number is the ArangoDB error number), or the
// exchange failed at the HTTP level (Number is 0).
type AError struct {
	StatusCode int
	Number     int
	Message    string
	Exception  error
}

func (e *AError) Error() string {
	if e.Number != 0 {
		return fmt.Sprintf("%s (status %d, errorNum %d)", e.Message, e.StatusCode, e.Number)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

func (e *AError) Unwrap() error {
	return e.Exception
}

// IsArangoError reports whether the server sent a structured error body.
func (e *AError) IsArangoError() bool {
	return e != nil && e.Number != 0
}

// NewArangoError builds the error for a structured server error body.
func NewArangoError(code, number int, message string) *AError {
	return &AError{StatusCode: code, Number: number, Message: arangoErrorPrefix + message}
}

// NewProtocolError builds the error for a failed exchange or an unexpected
// status without a structured body. err may be nil.
func NewProtocolError(status int, err error) *AError {
	detail := ""
	switch {
	case err != nil:
		detail = err.Error()
	case status != 0:
		detail = fmt.Sprintf("%d %s", status, http.StatusText(status))
	}
	return &AError{StatusCode: status, Message: protocolErrorPrefix + detail, Exception: err}
}

// errorBody is the JSON shape of every ArangoDB error response.
type errorBody struct {
	Error        bool   `json:"error"`
	Code         int    `json:"code"`
	ErrorNum     int    `json:"errorNum"`
	ErrorMessage string `json:"errorMessage"`
}
