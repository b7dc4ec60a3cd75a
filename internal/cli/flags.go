package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/raysh454/goarango/arango"
)

// edgeFlag collects repeated -edge collection:from1,from2:to1,to2 values.
type edgeFlag []arango.EdgeDefinition

func (e *edgeFlag) String() string {
	parts := make([]string, 0, len(*e))
	for _, d := range *e {
		parts = append(parts, d.Collection+":"+strings.Join(d.From, ",")+":"+strings.Join(d.To, ","))
	}
	return strings.Join(parts, " ")
}

func (e *edgeFlag) Set(v string) error {
	fields := strings.Split(v, ":")
	if len(fields) != 3 || fields[0] == "" || fields[1] == "" || fields[2] == "" {
		return fmt.Errorf("edge definition %q: want collection:from:to", v)
	}
	*e = append(*e, arango.EdgeDefinition{
		Collection: fields[0],
		From:       strings.Split(fields[1], ","),
		To:         strings.Split(fields[2], ","),
	})
	return nil
}

// listFlag collects a repeated string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// bindFlag collects repeated -bind name=value pairs. Values that parse as
// JSON are bound as such, anything else as a string.
type bindFlag map[string]any

func (b bindFlag) String() string {
	names := make([]string, 0, len(b))
	for k := range b {
		names = append(names, k)
	}
	return strings.Join(names, ",")
}

func (b bindFlag) Set(v string) error {
	name, value, ok := strings.Cut(v, "=")
	if !ok || name == "" {
		return fmt.Errorf("bind variable %q: want name=value", v)
	}
	var parsed any
	if err := json.Unmarshal([]byte(value), &parsed); err != nil {
		parsed = value
	}
	b[name] = parsed
	return nil
}
