package journal

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

//go:embed schema.sql
var schemaFS embed.FS

const redacted = "[REDACTED]"

// sensitiveHeaders never reach the journal in clear text.
var sensitiveHeaders = map[string]bool{
	"Authorization":       true,
	"Proxy-Authorization": true,
	"Cookie":              true,
	"Set-Cookie":          true,
}

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
	"PRAGMA busy_timeout=5000",
}

// migrate sets connection pragmas and creates the tables if needed.
func migrate(db *sql.DB) error {
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	ddl, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.Exec(string(ddl)); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// redactHeaders returns a canonicalized copy of h with credential headers masked.
func redactHeaders(h http.Header) http.Header {
	if len(h) == 0 {
		return nil
	}
	out := make(http.Header, len(h))
	for k, vs := range h {
		key := http.CanonicalHeaderKey(k)
		if sensitiveHeaders[key] {
			out[key] = []string{redacted}
			continue
		}
		out[key] = append([]string(nil), vs...)
	}
	return out
}

func marshalHeaders(h http.Header) (sql.NullString, error) {
	if len(h) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(h)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal headers: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func parseHeaders(s sql.NullString) http.Header {
	if !s.Valid || s.String == "" {
		return nil
	}
	var h http.Header
	if err := json.Unmarshal([]byte(s.String), &h); err != nil {
		return nil
	}
	return h
}

var chunkTypes = map[diffmatchpatch.Operation]string{
	diffmatchpatch.DiffInsert: "added",
	diffmatchpatch.DiffDelete: "removed",
}

// bodyDiff compares two response bodies character by character. Unchanged
// spans and whitespace-only edits are left out.
func bodyDiff(baseID, headID string, base, head []byte) *DiffResult {
	dmp := diffmatchpatch.New()
	ops := dmp.DiffCleanupSemantic(dmp.DiffMain(string(base), string(head), true))

	res := &DiffResult{BaseID: baseID, HeadID: headID, Chunks: []Chunk{}}
	for _, op := range ops {
		typ, changed := chunkTypes[op.Type]
		if !changed || strings.TrimSpace(op.Text) == "" {
			continue
		}
		res.Chunks = append(res.Chunks, Chunk{Type: typ, Content: op.Text})
	}
	return res
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
