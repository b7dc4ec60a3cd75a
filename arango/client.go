// Package arango is a client for the ArangoDB HTTP REST interface.
//
// A Client wraps one endpoint. Per-resource clients (Graph, Document,
// Collection, Database, Query) are fluent builders: optional parameters are
// set by chained calls and cleared once the next operation has run.
// Operations never return Go errors; failures are classified on Result.Error.
package arango

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/raysh454/goarango/internal/journal"
	"github.com/raysh454/goarango/internal/logging"
	"github.com/raysh454/goarango/internal/protocol"
	"github.com/raysh454/goarango/internal/webclient"
)

type (
	Endpoint        = protocol.Endpoint
	Logger          = logging.Logger
	Field           = logging.Field
	TransportConfig = webclient.Config
	JournalConfig   = journal.Config
)

type options struct {
	httpClient     *http.Client
	transport      *webclient.Config
	timeout        time.Duration
	insecure       bool
	logger         logging.Logger
	breaker        *webclient.BreakerConfig
	registerer     prometheus.Registerer
	journal        journal.Config
	tracerProvider trace.TracerProvider
}

// Option configures a Client.
type Option func(*options)

// WithHTTPClient sends requests through hc instead of a client built from
// the timeout options.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithTransportConfig replaces the default transport settings. Options
// applied after it (WithTimeout, WithCircuitBreaker, ...) still override
// single fields.
func WithTransportConfig(cfg TransportConfig) Option {
	return func(o *options) { o.transport = &cfg }
}

// WithTimeout bounds every exchange. Ignored when WithHTTPClient is set.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithInsecureTLS skips certificate verification for https endpoints.
func WithInsecureTLS() Option {
	return func(o *options) { o.insecure = true }
}

func WithLogger(l Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithZapLogger(z *zap.Logger) Option {
	return func(o *options) {
		if z != nil {
			o.logger = logging.NewZapFromLogger(z)
		}
	}
}

// WithCircuitBreaker stops sending requests to an endpoint that keeps failing
// with transport errors or 5xx answers. Calls made while the breaker is open
// fail with a protocol error that unwraps to webclient.ErrCircuitOpen.
func WithCircuitBreaker(failureRatio float64, minRequests uint32, openFor time.Duration) Option {
	return func(o *options) {
		cfg := webclient.BreakerConfig{
			Enabled:          true,
			FailureThreshold: failureRatio,
			MinRequests:      minRequests,
			Timeout:          openFor,
		}
		o.breaker = &cfg
	}
}

// WithMetrics registers request counters and latency histograms on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithJournal records every exchange in the SQLite journal at path.
func WithJournal(path string) Option {
	return func(o *options) { o.journal.Path = path }
}

// WithJournalConfig is WithJournal with body truncation settings.
func WithJournalConfig(cfg JournalConfig) Option {
	return func(o *options) { o.journal = cfg }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// Client talks to one endpoint. It is safe for concurrent use; the fluent
// resource clients it hands out are not.
type Client struct {
	conn    *protocol.Connection
	journal *journal.Journal
	logger  logging.Logger
}

// New builds a Client for ep.
func New(ep Endpoint, opts ...Option) (*Client, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	logger := logging.OrNop(o.logger).With(Field{Key: "component", Value: "arango"})

	wc, err := buildTransport(ep, o, logger)
	if err != nil {
		return nil, err
	}

	var j *journal.Journal
	if o.journal.Path != "" {
		j, err = journal.Open(o.journal, logger)
		if err != nil {
			_ = wc.Close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
		wc = journal.NewRecordingClient(wc, j, logger)
	}

	var connOpts []protocol.Option
	if o.tracerProvider != nil {
		connOpts = append(connOpts, protocol.WithTracerProvider(o.tracerProvider))
	}
	conn, err := protocol.NewConnection(ep, wc, logger, connOpts...)
	if err != nil {
		_ = wc.Close()
		if j != nil {
			_ = j.Close()
		}
		return nil, err
	}

	logger.Debug("client created",
		Field{Key: "alias", Value: conn.Alias()},
		Field{Key: "base_uri", Value: conn.BaseURI()})
	return &Client{conn: conn, journal: j, logger: logger}, nil
}

func buildTransport(ep Endpoint, o *options, logger logging.Logger) (webclient.WebClient, error) {
	cfg := webclient.DefaultConfig()
	if o.transport != nil {
		cfg = *o.transport
	}
	if o.timeout > 0 {
		cfg.Timeout = o.timeout
	}
	if o.insecure {
		cfg.InsecureSkipVerify = true
	}
	if o.breaker != nil {
		b := *o.breaker
		if b.Name == "" {
			b.Name = ep.Alias
		}
		cfg.Breaker = b
	}

	var wc webclient.WebClient
	if o.httpClient != nil {
		nc, err := webclient.NewNetHTTPClient(cfg, logger, o.httpClient)
		if err != nil {
			return nil, err
		}
		wc = nc
		if cfg.Breaker.Enabled {
			wc = webclient.NewBreakerClient(wc, cfg.Breaker, logger)
		}
	} else {
		var err error
		wc, err = webclient.NewWebClient(cfg, logger)
		if err != nil {
			return nil, err
		}
	}

	if o.registerer != nil {
		mc, err := webclient.NewMetricsClient(wc, o.registerer)
		if err != nil {
			_ = wc.Close()
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		wc = mc
	}
	return wc, nil
}

// Endpoint returns the normalized endpoint the client talks to.
func (c *Client) Endpoint() Endpoint { return c.conn.Endpoint() }

// Journal returns the exchange journal, or nil when none was configured.
func (c *Client) Journal() *journal.Journal { return c.journal }

// UseDatabase returns a client bound to another database on the same server.
// It shares the transport and journal with c; close only one of them.
func (c *Client) UseDatabase(name string) *Client {
	return &Client{conn: c.conn.WithDatabase(name), journal: c.journal, logger: c.logger}
}

func (c *Client) Graph() *Graph { return &Graph{conn: c.conn, params: protocol.NewParameters()} }

func (c *Client) Document() *Documents {
	return &Documents{conn: c.conn, params: protocol.NewParameters()}
}

func (c *Client) Collection() *Collections {
	return &Collections{conn: c.conn, params: protocol.NewParameters()}
}

func (c *Client) Database() *Databases { return &Databases{conn: c.conn} }

func (c *Client) Query() *Query { return &Query{conn: c.conn, params: protocol.NewParameters()} }

// Version returns the server's version document.
func (c *Client) Version(ctx context.Context) *Result[Document] {
	return send[Document](ctx, c.conn, protocol.NewRequest(http.MethodGet, protocol.APIVersion), expectOK)
}

// Close releases the transport and the journal.
func (c *Client) Close() error {
	err := c.conn.Close()
	if c.journal != nil {
		err = errors.Join(err, c.journal.Close())
	}
	return err
}

// send runs req and interprets its answer; a transport failure becomes a
// protocol error result.
func send[T any](ctx context.Context, conn *protocol.Connection, req *protocol.Request, exp expect) *Result[T] {
	resp, err := conn.Send(ctx, req)
	if err != nil {
		return failed[T](err)
	}
	return interpret[T](resp, exp)
}
