package arango

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

var (
	ErrUnknownAlias   = errors.New("arango: unknown connection alias")
	ErrDuplicateAlias = errors.New("arango: connection alias already registered")
)

type registration struct {
	endpoint Endpoint
	opts     []Option
}

var (
	connMu      sync.RWMutex
	connections = map[string]registration{}
)

// AddConnection registers ep under its alias for later Open calls.
func AddConnection(ep Endpoint, opts ...Option) error {
	n, err := ep.Validate()
	if err != nil {
		return err
	}
	connMu.Lock()
	defer connMu.Unlock()
	if _, ok := connections[n.Alias]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateAlias, n.Alias)
	}
	connections[n.Alias] = registration{endpoint: n, opts: opts}
	return nil
}

// AddConnectionString parses s with ParseConnectionString and registers it.
func AddConnectionString(s string, opts ...Option) error {
	ep, err := ParseConnectionString(s)
	if err != nil {
		return err
	}
	return AddConnection(ep, opts...)
}

func RemoveConnection(alias string) {
	connMu.Lock()
	defer connMu.Unlock()
	delete(connections, alias)
}

func HasConnection(alias string) bool {
	connMu.RLock()
	defer connMu.RUnlock()
	_, ok := connections[alias]
	return ok
}

// Aliases returns the registered aliases in sorted order.
func Aliases() []string {
	connMu.RLock()
	defer connMu.RUnlock()
	out := make([]string, 0, len(connections))
	for a := range connections {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Open builds a Client for a registered alias. extra options are applied
// after the ones given at registration.
func Open(alias string, extra ...Option) (*Client, error) {
	connMu.RLock()
	reg, ok := connections[alias]
	connMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlias, alias)
	}
	opts := append(append([]Option(nil), reg.opts...), extra...)
	return New(reg.endpoint, opts...)
}

// ParseConnectionString reads an endpoint from semicolon separated
// key=value pairs:
//
//	alias=main;server=localhost;port=8529;secure=false;database=shop;user=root;password=secret
//
// Keys are case-insensitive. Unknown keys are rejected.
func ParseConnectionString(s string) (Endpoint, error) {
	var ep Endpoint
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return ep, fmt.Errorf("connection string: malformed pair %q", part)
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "alias":
			ep.Alias = value
		case "server", "host", "hostname":
			ep.Hostname = value
		case "port":
			port, err := strconv.Atoi(value)
			if err != nil {
				return ep, fmt.Errorf("connection string: port %q: %w", value, err)
			}
			ep.Port = port
		case "secure", "ssl":
			secure, err := strconv.ParseBool(value)
			if err != nil {
				return ep, fmt.Errorf("connection string: secure %q: %w", value, err)
			}
			ep.Secure = secure
		case "database", "db":
			ep.Database = value
		case "user", "username":
			ep.Username = value
		case "password":
			ep.Password = value
		default:
			return ep, fmt.Errorf("connection string: unknown key %q", key)
		}
	}
	return ep.Validate()
}
