// Package cli implements arangoctl, a command-line front end for the arango
// client.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/raysh454/goarango/arango"
	"github.com/raysh454/goarango/internal/config"
	"github.com/raysh454/goarango/internal/logging"
)

var ErrUsage = errors.New("usage")

const usage = `usage: arangoctl [flags] <command> [args]

commands:
  version
  database list|create NAME|drop NAME
  collection list|create [-edge] NAME|delete NAME
  graph list|get NAME|delete [-drop] NAME
  graph create [-edge coll:from,...:to,...]... [-orphan coll]... NAME
  vertex get|delete GRAPH COLLECTION ID
  vertex create GRAPH COLLECTION JSON
  document get|delete ID
  document create COLLECTION JSON
  query [-bind name=value]... [-batch N] AQL
  journal list [-limit N]
  journal diff BASE_ID HEAD_ID
`

// Args are the global flags shared by every command.
type Args struct {
	ConfigPath string
	Alias      string
	Endpoint   string
	Database   string
	Timeout    time.Duration
	Journal    string
	LogLevel   string
}

// ParseArgs parses the global flags and returns them with the remaining
// command words. It does not read os.Args.
func ParseArgs(args []string) (*Args, []string, error) {
	fs := flag.NewFlagSet("arangoctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	a := &Args{}
	fs.StringVar(&a.ConfigPath, "config", "", "config file (default: search $ARANGO_CONFIG, ./arango.yaml, ~/.config/arango/config.yaml)")
	fs.StringVar(&a.Alias, "alias", "", "configured endpoint alias (default: first endpoint)")
	fs.StringVar(&a.Endpoint, "endpoint", "", "connection string, overrides -alias")
	fs.StringVar(&a.Database, "db", "", "database, overrides the endpoint's")
	fs.DurationVar(&a.Timeout, "timeout", 0, "request timeout (0 = config default)")
	fs.StringVar(&a.Journal, "journal", "", "journal file, overrides the config")
	fs.StringVar(&a.LogLevel, "log-level", "", "log level, overrides the config")

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() == 0 {
		return nil, nil, fmt.Errorf("%w: missing command", ErrUsage)
	}
	return a, fs.Args(), nil
}

type runner struct {
	args   *Args
	cfg    *config.Config
	logger logging.Logger
	stdout io.Writer
}

// Run executes one command. Results are written to stdout as indented JSON,
// logs go to stderr.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a, rest, err := ParseArgs(args)
	if err != nil {
		fmt.Fprint(stderr, usage)
		return err
	}

	cfg, err := loadConfig(a)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Logging, stderr)
	if err != nil {
		return err
	}

	r := &runner{args: a, cfg: cfg, logger: logger, stdout: stdout}
	cmd, rest := rest[0], rest[1:]
	switch cmd {
	case "version":
		return r.withClient(ctx, func(c *arango.Client) error {
			return r.print(c.Version(ctx))
		})
	case "database":
		return r.database(ctx, rest)
	case "collection":
		return r.collection(ctx, rest)
	case "graph":
		return r.graph(ctx, rest)
	case "vertex":
		return r.vertex(ctx, rest)
	case "document":
		return r.document(ctx, rest)
	case "query":
		return r.query(ctx, rest)
	case "journal":
		return r.journal(ctx, rest)
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func loadConfig(a *Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if a.ConfigPath != "" {
		cfg, _, err = config.LoadFromPath(a.ConfigPath)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if a.LogLevel != "" {
		cfg.Logging.Level = a.LogLevel
	}
	if a.Timeout > 0 {
		cfg.Client.Timeout = a.Timeout
	}
	if a.Journal != "" {
		cfg.Journal.Path = a.Journal
	}
	return cfg, nil
}

// newLogger keeps stdout for results: the line logger writes to stderr and
// defaults to warnings only.
func newLogger(cfg logging.Config, stderr io.Writer) (logging.Logger, error) {
	switch strings.ToLower(cfg.Format) {
	case "", "stdout":
		level := logging.LevelWarn
		if cfg.Level != "" && cfg.Level != logging.DefaultConfig().Level {
			level = logging.ParseLevel(cfg.Level)
		}
		return logging.NewWriterLogger(stderr, "arangoctl", level), nil
	default:
		return logging.New(cfg, "arangoctl")
	}
}

func (r *runner) endpoint() (arango.Endpoint, error) {
	var ep arango.Endpoint
	switch {
	case r.args.Endpoint != "":
		parsed, err := arango.ParseConnectionString(r.args.Endpoint)
		if err != nil {
			return ep, err
		}
		ep = parsed
	default:
		alias := r.args.Alias
		if alias == "" {
			if len(r.cfg.Endpoints) == 0 {
				return ep, errors.New("no endpoint: pass -endpoint or configure one")
			}
			alias = r.cfg.Endpoints[0].Alias
		}
		found, ok := r.cfg.Endpoint(alias)
		if !ok {
			return ep, fmt.Errorf("%w: %q", arango.ErrUnknownAlias, alias)
		}
		ep = found
	}
	if r.args.Database != "" {
		ep.Database = r.args.Database
	}
	return ep, nil
}

func (r *runner) withClient(ctx context.Context, fn func(c *arango.Client) error) error {
	ep, err := r.endpoint()
	if err != nil {
		return err
	}
	// A private registry keeps repeated runs in one process from colliding.
	c, err := arango.New(ep, r.cfg.ClientOptions(r.logger, prometheus.NewRegistry())...)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

// printResult writes the value of a successful result, or returns its error.
func printResult[T any](w io.Writer, res *arango.Result[T]) error {
	if err := res.Err(); err != nil {
		return err
	}
	return writeJSON(w, res.Value)
}

func (r *runner) print(res *arango.Result[arango.Document]) error {
	return printResult(r.stdout, res)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func need(args []string, n int, form string) error {
	if len(args) != n {
		return fmt.Errorf("%w: %s", ErrUsage, form)
	}
	return nil
}

func subFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseSub(fs *flag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUsage, fs.Name(), err)
	}
	return fs.Args(), nil
}

func split(args []string) (string, []string) {
	if len(args) == 0 {
		return "", nil
	}
	return args[0], args[1:]
}
