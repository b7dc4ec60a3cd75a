package logging

import (
	"fmt"
	"strings"
)

// Config selects the logger backend.
type Config struct {
	// Level is the minimum level: debug, info, warn or error.
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`

	// Format is "json" (zap), "stdout" (StdoutLogger) or "none".
	Format string `yaml:"format" validate:"omitempty,oneof=json zap stdout none"`
}

// DefaultConfig returns info-level stdout logging.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "stdout"}
}

// New constructs the logger described by cfg, scoped to component.
func New(cfg Config, component string) (Logger, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "stdout":
		return NewStdoutLogger(component).withMin(ParseLevel(cfg.Level)), nil
	case "json", "zap":
		z, err := NewZapLogger(cfg.Level)
		if err != nil {
			return nil, err
		}
		if component == "" {
			return z, nil
		}
		return z.With(Field{Key: "component", Value: component}), nil
	case "none":
		return NopLogger{}, nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

func (s *StdoutLogger) withMin(min Level) *StdoutLogger {
	s.min = min
	return s
}
