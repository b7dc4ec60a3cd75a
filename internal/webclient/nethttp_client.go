package webclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/raysh454/goarango/internal/logging"
)

// NetHTTPClient sends exchanges through a *http.Client and buffers every
// answer, including error bodies, so callers can classify them.
type NetHTTPClient struct {
	hc     *http.Client
	logger logging.Logger
}

// NewNetHTTPClient wraps hc, or builds one from cfg when hc is nil.
func NewNetHTTPClient(cfg Config, logger logging.Logger, hc *http.Client) (*NetHTTPClient, error) {
	log := logging.OrNop(logger).With(logging.Field{Key: "backend", Value: BackendNetHTTP})

	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
		if hc.Timeout <= 0 {
			hc.Timeout = 30 * time.Second
		}
		if cfg.InsecureSkipVerify {
			tr := http.DefaultTransport.(*http.Transport).Clone()
			tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed dev servers
			hc.Transport = tr
		}
	}

	log.Debug("transport ready",
		logging.Field{Key: "timeout", Value: hc.Timeout.String()},
		logging.Field{Key: "insecure", Value: cfg.InsecureSkipVerify})
	return &NetHTTPClient{hc: hc, logger: log}, nil
}

func (c *NetHTTPClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	method := strings.ToUpper(req.Method)

	body := io.Reader(http.NoBody)
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	hreq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	for k, vs := range req.Headers {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}

	start := time.Now()
	hresp, err := c.hc.Do(hreq)
	if err != nil {
		c.logger.Debug("round trip failed",
			logging.Field{Key: "method", Value: method},
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("%s %s: %w", method, req.URL, err)
	}
	defer hresp.Body.Close()

	data, err := io.ReadAll(hresp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, req.URL, err)
	}

	return &Response{
		Request:    req,
		StatusCode: hresp.StatusCode,
		Headers:    hresp.Header,
		Body:       data,
		ReceivedAt: time.Now(),
		Duration:   time.Since(start),
	}, nil
}

// Close drops idle keep-alive connections.
func (c *NetHTTPClient) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}
