package webclient

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsClient records request counts and latencies for the wrapped client.
type MetricsClient struct {
	next     WebClient
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetricsClient registers its collectors with reg. Collectors already
// registered by another client are reused.
func NewMetricsClient(next WebClient, reg prometheus.Registerer) (*MetricsClient, error) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arango",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "HTTP requests sent to ArangoDB by method and status code.",
	}, []string{"method", "code"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "arango",
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "Round trip latency of ArangoDB requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	var err error
	if requests, err = registerOrReuse(reg, requests); err != nil {
		return nil, err
	}
	if duration, err = registerOrReuse(reg, duration); err != nil {
		return nil, err
	}

	return &MetricsClient{next: next, requests: requests, duration: duration}, nil
}

func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if reg == nil {
		return c, nil
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *MetricsClient) Do(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()
	resp, err := m.next.Do(ctx, req)

	method := "UNKNOWN"
	if req != nil {
		method = req.Method
	}
	code := "error"
	if err == nil && resp != nil {
		code = strconv.Itoa(resp.StatusCode)
	}
	m.requests.WithLabelValues(method, code).Inc()
	m.duration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	return resp, err
}

func (m *MetricsClient) Close() error {
	return m.next.Close()
}
