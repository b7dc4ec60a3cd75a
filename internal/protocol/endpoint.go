package protocol

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/net/idna"
)

// Endpoint describes one server and the credentials used against it.
type Endpoint struct {
	Alias    string `yaml:"alias" validate:"required"`
	Hostname string `yaml:"hostname" validate:"required,hostlabel|ip"`
	Port     int    `yaml:"port" validate:"min=1,max=65535"`
	Secure   bool   `yaml:"secure"`
	Database string `yaml:"database" validate:"omitempty,max=64,excludesall=/"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func endpointValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("hostlabel", func(fl validator.FieldLevel) bool {
			return isHostName(fl.Field().String())
		})
	})
	return validate
}

// isHostName accepts dot separated labels of letters, digits, '-' and '_'.
// Underscores are not RFC 1123 but container and compose service names use
// them and the system resolver accepts them.
func isHostName(host string) bool {
	host = strings.TrimSuffix(host, ".")
	if host == "" || len(host) > 253 {
		return false
	}
	for _, label := range strings.Split(host, ".") {
		if label == "" || len(label) > 63 || label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			switch {
			case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			default:
				return false
			}
		}
	}
	return true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Normalize returns a copy with the hostname converted to its lower-case
// ASCII form. Only internationalized names go through IDNA.
func (e Endpoint) Normalize() (Endpoint, error) {
	host := strings.TrimSpace(e.Hostname)
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	switch {
	case host == "" || net.ParseIP(host) != nil:
	case isASCII(host):
		host = strings.ToLower(host)
	default:
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return e, fmt.Errorf("%w: hostname %q: %v", ErrInvalidEndpoint, e.Hostname, err)
		}
		host = ascii
	}
	e.Hostname = host
	e.Alias = strings.TrimSpace(e.Alias)
	return e, nil
}

// Validate normalizes e and checks it, returning the normalized copy.
func (e Endpoint) Validate() (Endpoint, error) {
	n, err := e.Normalize()
	if err != nil {
		return e, err
	}
	if err := endpointValidator().Struct(n); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return e, fmt.Errorf("%w: %s", ErrInvalidEndpoint, strings.Join(msgs, ", "))
		}
		return e, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	return n, nil
}

// Scheme is https for secured endpoints, http otherwise.
func (e Endpoint) Scheme() string {
	if e.Secure {
		return "https"
	}
	return "http"
}

// HostPort joins hostname and port, bracketing IPv6 literals.
func (e Endpoint) HostPort() string {
	return net.JoinHostPort(e.Hostname, strconv.Itoa(e.Port))
}
