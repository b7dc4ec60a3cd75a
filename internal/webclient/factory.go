package webclient

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/raysh454/goarango/internal/logging"
)

// ErrUnknownBackend is returned by NewWebClient for an unregistered backend name.
var ErrUnknownBackend = errors.New("webclient: unknown backend")

// BackendConstructor builds a transport from the config.
type BackendConstructor func(cfg Config, logger logging.Logger) (WebClient, error)

var (
	backendsMu sync.RWMutex
	backends   = map[string]BackendConstructor{}
)

func init() {
	RegisterBackend(BackendNetHTTP, func(cfg Config, logger logging.Logger) (WebClient, error) {
		return NewNetHTTPClient(cfg, logger, nil)
	})
}

// RegisterBackend makes ctor available under name (case-insensitive).
// A later registration under the same name wins.
func RegisterBackend(name string, ctor BackendConstructor) {
	name = normalizeBackend(name)
	if name == "" || ctor == nil {
		return
	}
	backendsMu.Lock()
	backends[name] = ctor
	backendsMu.Unlock()
}

// NewWebClient builds cfg.Backend and wraps it in a circuit breaker when
// cfg.Breaker.Enabled is set.
func NewWebClient(cfg Config, logger logging.Logger) (WebClient, error) {
	name := normalizeBackend(cfg.Backend)
	if name == "" {
		name = BackendNetHTTP
	}

	backendsMu.RLock()
	ctor := backends[name]
	backendsMu.RUnlock()
	if ctor == nil {
		return nil, fmt.Errorf("%w %q (have %s)", ErrUnknownBackend, name, strings.Join(ListBackends(), ", "))
	}

	wc, err := ctor(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", name, err)
	}
	if wc == nil {
		return nil, fmt.Errorf("backend %s: constructor returned nil", name)
	}

	if cfg.Breaker.Enabled {
		wc = NewBreakerClient(wc, cfg.Breaker, logger)
	}
	return wc, nil
}

// ListBackends returns the registered backend names in sorted order.
func ListBackends() []string {
	backendsMu.RLock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	backendsMu.RUnlock()
	sort.Strings(names)
	return names
}

func normalizeBackend(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
