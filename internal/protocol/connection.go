// Package protocol turns Requests into HTTP exchanges against one ArangoDB
// endpoint and classifies the answers.
package protocol

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/raysh454/goarango/internal/logging"
	"github.com/raysh454/goarango/internal/webclient"
)

const tracerName = "github.com/raysh454/goarango/internal/protocol"

// Connection stores one endpoint and performs exchanges with it.
// It is safe for concurrent use.
type Connection struct {
	endpoint Endpoint
	baseURI  string
	client   webclient.WebClient
	logger   logging.Logger
	tracer   trace.Tracer
}

// Option customizes a Connection.
type Option func(*Connection)

// WithTracerProvider traces exchanges with tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Connection) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewConnection validates ep and binds it to client.
func NewConnection(ep Endpoint, client webclient.WebClient, logger logging.Logger, opts ...Option) (*Connection, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: nil webclient", ErrInvalidEndpoint)
	}
	ep, err := ep.Validate()
	if err != nil {
		return nil, err
	}

	c := &Connection{
		endpoint: ep,
		baseURI:  buildBaseURI(ep),
		client:   client,
		logger: logging.OrNop(logger).With(
			logging.Field{Key: "component", Value: "connection"},
			logging.Field{Key: "alias", Value: ep.Alias}),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func buildBaseURI(ep Endpoint) string {
	base := ep.Scheme() + "://" + ep.HostPort() + "/"
	if ep.Database != "" {
		base += "_db/" + url.PathEscape(ep.Database) + "/"
	}
	return base
}

// Alias is the endpoint's registered name.
func (c *Connection) Alias() string { return c.endpoint.Alias }

// Endpoint returns the normalized endpoint.
func (c *Connection) Endpoint() Endpoint { return c.endpoint }

// BaseURI is the URI every request path is resolved against.
func (c *Connection) BaseURI() string { return c.baseURI }

// WithDatabase returns a connection to another database on the same server,
// sharing the transport. An empty name targets the server's default database.
func (c *Connection) WithDatabase(name string) *Connection {
	cp := *c
	cp.endpoint.Database = name
	cp.baseURI = buildBaseURI(cp.endpoint)
	return &cp
}

// Close releases the transport.
func (c *Connection) Close() error {
	return c.client.Close()
}

// Send performs one exchange. A returned error means no HTTP answer was
// obtained; every answer, successful or not, comes back as a Response.
func (c *Connection) Send(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	target := c.baseURI + req.RelativeURI()

	ctx, span := c.tracer.Start(ctx, "arango "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "arangodb"),
			attribute.String("db.namespace", c.endpoint.Database),
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.APIBase+req.Path),
			attribute.String("server.address", c.endpoint.Hostname),
			attribute.Int("server.port", c.endpoint.Port),
		))
	defer span.End()

	headers := http.Header{}
	headers.Set("Accept", "application/json")
	for k, vs := range req.Headers {
		for _, v := range vs {
			headers.Add(k, v)
		}
	}
	if c.endpoint.Username != "" && c.endpoint.Password != "" {
		headers.Set("Authorization", "Basic "+basicAuth(c.endpoint.Username, c.endpoint.Password))
	}
	if len(req.Body) > 0 {
		headers.Set("Content-Type", "application/json; charset=utf-8")
	}

	start := time.Now()
	wresp, err := c.client.Do(ctx, &webclient.Request{
		Method:  req.Method,
		URL:     target,
		Headers: headers,
		Body:    req.Body,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("exchange failed",
			logging.Field{Key: "method", Value: req.Method},
			logging.Field{Key: "path", Value: req.APIBase + req.Path},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("send %s %s: %w", req.Method, req.APIBase+req.Path, err)
	}

	resp := NewResponse(wresp.StatusCode, wresp.Headers, wresp.Body)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.Error != nil {
		span.SetStatus(codes.Error, resp.Error.Message)
		if resp.Error.Number != 0 {
			span.SetAttributes(attribute.Int("arango.error_num", resp.Error.Number))
		}
	}

	c.logger.Debug("exchange completed",
		logging.Field{Key: "method", Value: req.Method},
		logging.Field{Key: "path", Value: req.APIBase + req.Path},
		logging.Field{Key: "status", Value: resp.StatusCode},
		logging.Field{Key: "duration", Value: time.Since(start).String()})
	return resp, nil
}

func basicAuth(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}
