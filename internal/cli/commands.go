package cli

import (
	"context"
	"fmt"

	"github.com/raysh454/goarango/arango"
	"github.com/raysh454/goarango/internal/journal"
)

func (r *runner) database(ctx context.Context, args []string) error {
	sub, rest := split(args)
	return r.withClient(ctx, func(c *arango.Client) error {
		switch sub {
		case "list":
			return printResult(r.stdout, c.Database().List(ctx))
		case "create":
			if err := need(rest, 1, "database create NAME"); err != nil {
				return err
			}
			return printResult(r.stdout, c.Database().Create(ctx, rest[0]))
		case "drop":
			if err := need(rest, 1, "database drop NAME"); err != nil {
				return err
			}
			return printResult(r.stdout, c.Database().Drop(ctx, rest[0]))
		default:
			return fmt.Errorf("%w: database list|create|drop", ErrUsage)
		}
	})
}

func (r *runner) collection(ctx context.Context, args []string) error {
	sub, rest := split(args)
	switch sub {
	case "list":
		return r.withClient(ctx, func(c *arango.Client) error {
			return printResult(r.stdout, c.Collection().ExcludeSystem(true).List(ctx))
		})
	case "create":
		fs := subFlags("collection create")
		edge := fs.Bool("edge", false, "create an edge collection")
		rest, err := parseSub(fs, rest)
		if err != nil {
			return err
		}
		if err := need(rest, 1, "collection create [-edge] NAME"); err != nil {
			return err
		}
		kind := arango.DocumentCollection
		if *edge {
			kind = arango.EdgeCollection
		}
		return r.withClient(ctx, func(c *arango.Client) error {
			return r.print(c.Collection().Type(kind).Create(ctx, rest[0]))
		})
	case "delete":
		if err := need(rest, 1, "collection delete NAME"); err != nil {
			return err
		}
		return r.withClient(ctx, func(c *arango.Client) error {
			return r.print(c.Collection().Delete(ctx, rest[0]))
		})
	default:
		return fmt.Errorf("%w: collection list|create|delete", ErrUsage)
	}
}

func (r *runner) graph(ctx context.Context, args []string) error {
	sub, rest := split(args)
	switch sub {
	case "list":
		return r.withClient(ctx, func(c *arango.Client) error {
			return r.print(c.Graph().List(ctx))
		})
	case "get":
		if err := need(rest, 1, "graph get NAME"); err != nil {
			return err
		}
		return r.withClient(ctx, func(c *arango.Client) error {
			return r.print(c.Graph().Get(ctx, rest[0]))
		})
	case "create":
		fs := subFlags("graph create")
		var edges edgeFlag
		var orphans listFlag
		fs.Var(&edges, "edge", "edge definition collection:from1,from2:to1,to2 (repeatable)")
		fs.Var(&orphans, "orphan", "orphan vertex collection (repeatable)")
		rest, err := parseSub(fs, rest)
		if err != nil {
			return err
		}
		if err := need(rest, 1, "graph create [-edge ...] [-orphan ...] NAME"); err != nil {
			return err
		}
		return r.withClient(ctx, func(c *arango.Client) error {
			return r.print(c.Graph().
				EdgeDefinitions(edges...).
				OrphanCollections(orphans...).
				Create(ctx, rest[0]))
		})
	case "delete":
		fs := subFlags("graph delete")
		drop := fs.Bool("drop", false, "also drop collections no other graph uses")
		rest, err := parseSub(fs, rest)
		if err != nil {
			return err
		}
		if err := need(rest, 1, "graph delete [-drop] NAME"); err != nil {
			return err
		}
		return r.withClient(ctx, func(c *arango.Client) error {
			return r.print(c.Graph().DropCollections(*drop).Delete(ctx, rest[0]))
		})
	default:
		return fmt.Errorf("%w: graph list|get|create|delete", ErrUsage)
	}
}

func (r *runner) vertex(ctx context.Context, args []string) error {
	sub, rest := split(args)
	if err := need(rest, 3, "vertex "+sub+" GRAPH COLLECTION ID|JSON"); err != nil {
		return err
	}
	graph, coll, arg := rest[0], rest[1], rest[2]
	return r.withClient(ctx, func(c *arango.Client) error {
		switch sub {
		case "get":
			return r.print(c.Graph().GetVertex(ctx, graph, coll, arg))
		case "create":
			doc, err := arango.ToDocument(arg)
			if err != nil {
				return err
			}
			return r.print(c.Graph().CreateVertex(ctx, graph, coll, doc))
		case "delete":
			return r.print(c.Graph().DeleteVertex(ctx, graph, coll, arg))
		default:
			return fmt.Errorf("%w: vertex get|create|delete", ErrUsage)
		}
	})
}

func (r *runner) document(ctx context.Context, args []string) error {
	sub, rest := split(args)
	return r.withClient(ctx, func(c *arango.Client) error {
		switch sub {
		case "get":
			if err := need(rest, 1, "document get ID"); err != nil {
				return err
			}
			return r.print(c.Document().Get(ctx, rest[0]))
		case "create":
			if err := need(rest, 2, "document create COLLECTION JSON"); err != nil {
				return err
			}
			doc, err := arango.ToDocument(rest[1])
			if err != nil {
				return err
			}
			return r.print(c.Document().ReturnNew(true).Create(ctx, rest[0], doc))
		case "delete":
			if err := need(rest, 1, "document delete ID"); err != nil {
				return err
			}
			return r.print(c.Document().Delete(ctx, rest[0]))
		default:
			return fmt.Errorf("%w: document get|create|delete", ErrUsage)
		}
	})
}

func (r *runner) query(ctx context.Context, args []string) error {
	fs := subFlags("query")
	binds := bindFlag{}
	fs.Var(binds, "bind", "bind variable name=value (repeatable)")
	batch := fs.Int("batch", 0, "cursor batch size")
	rest, err := parseSub(fs, args)
	if err != nil {
		return err
	}
	if err := need(rest, 1, "query [-bind name=value]... [-batch N] AQL"); err != nil {
		return err
	}
	return r.withClient(ctx, func(c *arango.Client) error {
		q := c.Query().Aql(rest[0])
		for name, v := range binds {
			q.BindVar(name, v)
		}
		if *batch > 0 {
			q.BatchSize(*batch)
		}
		return printResult(r.stdout, q.Execute(ctx))
	})
}

func (r *runner) journal(ctx context.Context, args []string) error {
	if r.cfg.Journal.Path == "" {
		return fmt.Errorf("%w: journal needs -journal or a journal.path in the config", ErrUsage)
	}
	sub, rest := split(args)

	j, err := journal.Open(r.cfg.Journal, r.logger)
	if err != nil {
		return err
	}
	defer j.Close()

	switch sub {
	case "list":
		fs := subFlags("journal list")
		limit := fs.Int("limit", 20, "number of exchanges")
		if _, err := parseSub(fs, rest); err != nil {
			return err
		}
		exchanges, err := j.List(ctx, *limit)
		if err != nil {
			return err
		}
		type line struct {
			ID     string `json:"id"`
			Method string `json:"method"`
			URL    string `json:"url"`
			Status int    `json:"status"`
			Error  string `json:"error,omitempty"`
		}
		out := make([]line, 0, len(exchanges))
		for _, ex := range exchanges {
			out = append(out, line{ID: ex.ID, Method: ex.Method, URL: ex.URL, Status: ex.StatusCode, Error: ex.Err})
		}
		return writeJSON(r.stdout, out)
	case "diff":
		if err := need(rest, 2, "journal diff BASE_ID HEAD_ID"); err != nil {
			return err
		}
		d, err := j.Diff(ctx, rest[0], rest[1])
		if err != nil {
			return err
		}
		return writeJSON(r.stdout, d)
	default:
		return fmt.Errorf("%w: journal list|diff", ErrUsage)
	}
}
