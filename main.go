package main

import (
	"context"
	"fmt"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"

	"github.com/raysh454/goarango/arango"
	"github.com/raysh454/goarango/internal/fakearango"
	"github.com/raysh454/goarango/internal/logging"
)

type person struct {
	Key  string `json:"_key"`
	Name string `json:"name"`
}

// setupServer starts an in-process emulator with basic auth enabled.
func setupServer() *httptest.Server {
	return httptest.NewServer(fakearango.NewServer(fakearango.Config{
		Username: "root",
		Password: "demo",
		Logger:   logging.NopLogger{},
	}))
}

func main() {
	server := setupServer()
	defer server.Close()

	u, _ := url.Parse(server.URL)
	port, _ := strconv.Atoi(u.Port())

	logger, err := logging.NewZapLogger("info")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	client, err := arango.New(arango.Endpoint{
		Alias:    "demo",
		Hostname: u.Hostname(),
		Port:     port,
		Username: "root",
		Password: "demo",
	}, arango.WithLogger(logger))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx := context.Background()
	if err := run(ctx, client); err != nil {
		fmt.Fprintln(os.Stderr, "demo:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *arango.Client) error {
	version := client.Version(ctx)
	if err := version.Err(); err != nil {
		return err
	}
	fmt.Printf("server version: %v\n", version.Value["version"])

	created := client.Graph().
		EdgeDefinitions(arango.EdgeDefinition{Collection: "knows", From: []string{"people"}, To: []string{"people"}}).
		Create(ctx, "social")
	if err := created.Err(); err != nil {
		return err
	}

	for _, p := range []person{{"alice", "Alice"}, {"bob", "Bob"}} {
		if err := client.Graph().CreateVertex(ctx, "social", "people", p).Err(); err != nil {
			return err
		}
	}
	if err := client.Graph().CreateEdge(ctx, "social", "knows", "people/alice", "people/bob", nil).Err(); err != nil {
		return err
	}

	res := client.Graph().GetVertex(ctx, "social", "people", "alice")
	var alice person
	if err := res.DecodeField("vertex", &alice); err != nil {
		return err
	}
	fmt.Printf("vertex %s: %s (rev %s)\n", alice.Key, alice.Name, res.Headers.Get("Etag"))

	// A stale revision is refused with 412 and leaves the vertex untouched.
	stale := client.Graph().IfMatch("stale").UpdateVertex(ctx, "social", "people", "alice", arango.Document{"name": "Eve"})
	fmt.Printf("stale update: status %d, %v\n", stale.StatusCode, stale.Error)

	names := client.Query().
		Aql("FOR p IN @@coll RETURN p.name").
		BindVar("@coll", "people").
		BatchSize(1).
		Execute(ctx)
	if err := names.Err(); err != nil {
		return err
	}
	fmt.Printf("people: %v\n", names.Value)
	return nil
}
