package webclient

import "time"

const BackendNetHTTP = "nethttp"

// Config selects and tunes the transport.
type Config struct {
	// Backend names a registered backend; empty means nethttp.
	Backend string `yaml:"backend"`

	// Timeout bounds a whole exchange. Zero means 30s.
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`

	// InsecureSkipVerify disables TLS verification for https endpoints.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`

	Breaker BreakerConfig `yaml:"breaker"`
}

// BreakerConfig mirrors gobreaker.Settings plus a failure-ratio trip rule.
type BreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Name        string        `yaml:"name"`
	MaxRequests uint32        `yaml:"max_requests"`
	Interval    time.Duration `yaml:"interval"`
	Timeout     time.Duration `yaml:"timeout"`

	// FailureThreshold is the failure ratio that trips the breaker once
	// MinRequests have been seen in the current interval.
	FailureThreshold float64 `yaml:"failure_threshold" validate:"gte=0,lte=1"`
	MinRequests      uint32  `yaml:"min_requests"`
}

// DefaultConfig returns the nethttp backend with a 30s timeout and the
// breaker disabled.
func DefaultConfig() Config {
	return Config{
		Backend: BackendNetHTTP,
		Timeout: 30 * time.Second,
		Breaker: DefaultBreakerConfig("arango"),
	}
}

// DefaultBreakerConfig returns breaker settings tuned for a single database endpoint.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	d := DefaultBreakerConfig(c.Name)
	if c.Name == "" {
		c.Name = "arango"
	}
	if c.MaxRequests == 0 {
		c.MaxRequests = d.MaxRequests
	}
	if c.Interval == 0 {
		c.Interval = d.Interval
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.MinRequests == 0 {
		c.MinRequests = d.MinRequests
	}
	return c
}
