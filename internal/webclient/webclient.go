// Package webclient is the HTTP transport underneath protocol.Connection.
// Backends perform one fully-buffered exchange per Do call; decorators add
// circuit breaking and metrics around any backend.
package webclient

import (
	"context"
	"errors"
)

var (
	// ErrNilRequest is returned by Do when req is nil.
	ErrNilRequest = errors.New("webclient: nil request")

	// ErrCircuitOpen is returned while the breaker rejects requests.
	ErrCircuitOpen = errors.New("webclient: circuit open")
)

type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	Close() error
}
