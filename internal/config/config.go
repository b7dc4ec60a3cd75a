// Package config loads client settings and named endpoints from YAML.
//
// A file looks like:
//
//	logging:
//	  level: debug
//	  format: json
//	client:
//	  timeout: 10s
//	  metrics: true
//	  breaker:
//	    enabled: true
//	    failure_threshold: 0.5
//	journal:
//	  path: ./arango-journal.db
//	endpoints:
//	  - alias: main
//	    hostname: localhost
//	    port: 8529
//	    username: root
//	    password: ${ARANGO_PASSWORD}
//
// ${VAR} references are expanded from the environment before parsing; unset
// variables expand to "". A bare $ is kept, so pa$word stays as written.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/raysh454/goarango/arango"
	"github.com/raysh454/goarango/internal/journal"
	"github.com/raysh454/goarango/internal/logging"
	"github.com/raysh454/goarango/internal/protocol"
	"github.com/raysh454/goarango/internal/webclient"
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Logging   logging.Config      `yaml:"logging"`
	Client    ClientConfig        `yaml:"client"`
	Journal   journal.Config      `yaml:"journal"`
	Endpoints []protocol.Endpoint `yaml:"endpoints" validate:"unique=Alias,dive"`
}

// ClientConfig is the transport configuration plus instrumentation switches.
type ClientConfig struct {
	webclient.Config `yaml:",inline"`

	// Metrics registers request metrics on the default prometheus registry.
	Metrics bool `yaml:"metrics"`
}

func DefaultConfig() *Config {
	return &Config{
		Logging: logging.DefaultConfig(),
		Client:  ClientConfig{Config: webclient.DefaultConfig()},
	}
}

// Load finds and loads the config file, or returns defaults if none is found.
// The second return value is the path that was read.
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	return cfg, path, err
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${VAR} references only.
func expandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}

// Parse expands environment references in data, decodes it over the
// defaults and validates the result. Endpoint hostnames are normalized.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section and normalizes the endpoints in place.
func (c *Config) Validate() error {
	for i, ep := range c.Endpoints {
		n, err := ep.Validate()
		if err != nil {
			return fmt.Errorf("%w: endpoint %d: %w", ErrInvalidConfig, i, err)
		}
		c.Endpoints[i] = n
	}

	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Endpoint looks up a configured endpoint by alias.
func (c *Config) Endpoint(alias string) (protocol.Endpoint, bool) {
	for _, ep := range c.Endpoints {
		if ep.Alias == alias {
			return ep, true
		}
	}
	return protocol.Endpoint{}, false
}

// Logger builds the configured logger scoped to component.
func (c *Config) Logger(component string) (logging.Logger, error) {
	return logging.New(c.Logging, component)
}

// ClientOptions translates the client and journal sections into arango
// options. reg receives the metrics when enabled; nil means the default
// registerer.
func (c *Config) ClientOptions(logger logging.Logger, reg prometheus.Registerer) []arango.Option {
	opts := []arango.Option{arango.WithTransportConfig(c.Client.Config)}
	if logger != nil {
		opts = append(opts, arango.WithLogger(logger))
	}
	if c.Client.Metrics {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		opts = append(opts, arango.WithMetrics(reg))
	}
	if c.Journal.Path != "" {
		opts = append(opts, arango.WithJournalConfig(c.Journal))
	}
	return opts
}

// Register adds every configured endpoint to the arango connection registry.
// It stops at the first alias that is already registered.
func (c *Config) Register(opts ...arango.Option) error {
	for _, ep := range c.Endpoints {
		if err := arango.AddConnection(ep, opts...); err != nil {
			return err
		}
	}
	return nil
}
