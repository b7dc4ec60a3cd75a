package webclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"

	"github.com/raysh454/goarango/internal/logging"
)

// errServerStatus marks a 5xx answer so the breaker counts it as a failure
// while the response still reaches the caller.
var errServerStatus = errors.New("server error status")

// callerGaveUp wraps an error caused by the caller's own context. It says
// nothing about the endpoint's health and does not count against it.
type callerGaveUp struct{ err error }

func (c *callerGaveUp) Error() string { return c.err.Error() }
func (c *callerGaveUp) Unwrap() error { return c.err }

// BreakerClient wraps a WebClient in a gobreaker circuit breaker. Transport
// errors and 5xx responses count as failures; calls abandoned through the
// caller's context do not.
type BreakerClient struct {
	next   WebClient
	cb     *gobreaker.CircuitBreaker
	logger logging.Logger
}

func NewBreakerClient(next WebClient, cfg BreakerConfig, logger logging.Logger) *BreakerClient {
	cfg = cfg.withDefaults()
	log := logging.OrNop(logger).With(logging.Field{Key: "breaker", Value: cfg.Name})

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				logging.Field{Key: "from", Value: from.String()},
				logging.Field{Key: "to", Value: to.String()})
		},
		IsSuccessful: func(err error) bool {
			var gaveUp *callerGaveUp
			return err == nil || errors.As(err, &gaveUp)
		},
	})

	return &BreakerClient{next: next, cb: cb, logger: log}
}

func (b *BreakerClient) Do(ctx context.Context, req *Request) (*Response, error) {
	out, err := b.cb.Execute(func() (any, error) {
		resp, err := b.next.Do(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &callerGaveUp{err: err}
			}
			return nil, err
		}
		if resp.IsServerError() {
			return resp, errServerStatus
		}
		return resp, nil
	})

	resp, _ := out.(*Response)
	var gaveUp *callerGaveUp
	switch {
	case errors.As(err, &gaveUp):
		return nil, gaveUp.err
	case err == nil:
		return resp, nil
	case errors.Is(err, errServerStatus):
		return resp, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		b.logger.Debug("request rejected by circuit breaker", logging.Field{Key: "state", Value: b.cb.State().String()})
		return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	default:
		return nil, err
	}
}

// State reports the breaker state (closed, half-open, open).
func (b *BreakerClient) State() string {
	return b.cb.State().String()
}

func (b *BreakerClient) Close() error {
	return b.next.Close()
}
