package fakearango

import (
	"time"

	"github.com/raysh454/goarango/internal/logging"
)

// Config holds configuration for the emulator.
type Config struct {
	// ListenAddr is used by HTTPServer; tests use httptest instead.
	ListenAddr string `yaml:"listen_addr"`

	// Username and Password enable basic authentication when both are set.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Version is reported by GET /_api/version.
	Version string `yaml:"version"`

	// BatchSize is the cursor batch size when a query does not set one.
	BatchSize int `yaml:"batch_size"`

	// CursorTTL is how long an idle cursor survives when a query does not
	// set a ttl.
	CursorTTL time.Duration `yaml:"cursor_ttl"`

	Logger logging.Logger `yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ListenAddr: ":8529",
		Version:    "3.11.0",
		BatchSize:  1000,
		CursorTTL:  30 * time.Second,
	}
}
