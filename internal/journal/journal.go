// Package journal keeps a SQLite record of every exchange a connection makes,
// so responses for the same URL can be listed and diffed later.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/raysh454/goarango/internal/logging"
)

var (
	ErrPathEmpty        = errors.New("journal: path is empty")
	ErrExchangeNotFound = errors.New("journal: exchange not found")
)

// Journal stores exchanges in a SQLite database.
type Journal struct {
	db     *sql.DB
	cfg    Config
	logger logging.Logger
}

// Open creates (or reopens) the journal database at cfg.Path.
func Open(cfg Config, logger logging.Logger) (*Journal, error) {
	if cfg.Path == "" {
		return nil, ErrPathEmpty
	}
	logger = logging.OrNop(logger).With(logging.Field{Key: "component", Value: "journal"})

	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info("journal opened", logging.Field{Key: "path", Value: cfg.Path})

	return &Journal{db: db, cfg: cfg, logger: logger}, nil
}

// Record stores ex. A missing ID or start time is filled in.
func (j *Journal) Record(ctx context.Context, ex *Exchange) error {
	if ex == nil {
		return errors.New("journal: nil exchange")
	}
	if ex.ID == "" {
		ex.ID = uuid.New().String()
	}
	if ex.StartedAt.IsZero() {
		ex.StartedAt = time.Now()
	}

	reqHeaders, err := marshalHeaders(redactHeaders(ex.RequestHeaders))
	if err != nil {
		return err
	}
	respHeaders, err := marshalHeaders(redactHeaders(ex.ResponseHeaders))
	if err != nil {
		return err
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO exchanges (id, method, url, status_code, request_headers, request_body,
			response_headers, response_body, error, started_at, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ex.ID, ex.Method, ex.URL, ex.StatusCode, reqHeaders, j.truncate(ex.RequestBody),
		respHeaders, j.truncate(ex.ResponseBody), nullableString(ex.Err),
		ex.StartedAt.UnixNano(), int64(ex.Duration))
	if err != nil {
		return fmt.Errorf("failed to insert exchange: %w", err)
	}

	j.logger.Debug("exchange recorded",
		logging.Field{Key: "id", Value: ex.ID},
		logging.Field{Key: "method", Value: ex.Method},
		logging.Field{Key: "url", Value: ex.URL},
		logging.Field{Key: "status", Value: ex.StatusCode})
	return nil
}

func (j *Journal) truncate(b []byte) []byte {
	if j.cfg.MaxBodyBytes > 0 && len(b) > j.cfg.MaxBodyBytes {
		return b[:j.cfg.MaxBodyBytes]
	}
	return b
}

const selectExchange = `
	SELECT id, method, url, status_code, request_headers, request_body,
		response_headers, response_body, error, started_at, duration_ns
	FROM exchanges`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExchange(row rowScanner) (*Exchange, error) {
	var (
		ex                  Exchange
		reqHdr, respHdr     sql.NullString
		errText             sql.NullString
		startedAt, duration int64
	)
	if err := row.Scan(&ex.ID, &ex.Method, &ex.URL, &ex.StatusCode, &reqHdr, &ex.RequestBody,
		&respHdr, &ex.ResponseBody, &errText, &startedAt, &duration); err != nil {
		return nil, err
	}
	ex.RequestHeaders = parseHeaders(reqHdr)
	ex.ResponseHeaders = parseHeaders(respHdr)
	ex.Err = errText.String
	ex.StartedAt = time.Unix(0, startedAt)
	ex.Duration = time.Duration(duration)
	return &ex, nil
}

// Get returns one exchange by id.
func (j *Journal) Get(ctx context.Context, id string) (*Exchange, error) {
	row := j.db.QueryRowContext(ctx, selectExchange+` WHERE id = ?`, id)
	ex, err := scanExchange(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrExchangeNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load exchange: %w", err)
	}
	return ex, nil
}

// List returns the most recent exchanges, newest first. limit <= 0 means 50.
func (j *Journal) List(ctx context.Context, limit int) ([]*Exchange, error) {
	if limit <= 0 {
		limit = 50
	}
	return j.query(ctx, selectExchange+` ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
}

// History returns the exchanges recorded for url, newest first.
func (j *Journal) History(ctx context.Context, url string, limit int) ([]*Exchange, error) {
	if limit <= 0 {
		limit = 50
	}
	return j.query(ctx, selectExchange+` WHERE url = ? ORDER BY started_at DESC, rowid DESC LIMIT ?`, url, limit)
}

func (j *Journal) query(ctx context.Context, q string, args ...any) ([]*Exchange, error) {
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	var out []*Exchange
	for rows.Next() {
		ex, err := scanExchange(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

// Diff compares the response bodies of two exchanges. Results are cached.
func (j *Journal) Diff(ctx context.Context, baseID, headID string) (*DiffResult, error) {
	var cached string
	err := j.db.QueryRowContext(ctx,
		`SELECT diff_json FROM diffs WHERE base_id = ? AND head_id = ?`, baseID, headID).Scan(&cached)
	if err == nil {
		var d DiffResult
		if err := json.Unmarshal([]byte(cached), &d); err == nil {
			return &d, nil
		}
		j.logger.Warn("discarding unreadable cached diff",
			logging.Field{Key: "base", Value: baseID}, logging.Field{Key: "head", Value: headID})
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read cached diff: %w", err)
	}

	base, err := j.Get(ctx, baseID)
	if err != nil {
		return nil, err
	}
	head, err := j.Get(ctx, headID)
	if err != nil {
		return nil, err
	}

	d := bodyDiff(baseID, headID, base.ResponseBody, head.ResponseBody)
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal diff: %w", err)
	}
	if _, err := j.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO diffs (id, base_id, head_id, diff_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.New().String(), baseID, headID, string(data), time.Now().Unix()); err != nil {
		j.logger.Warn("failed to cache diff", logging.Field{Key: "error", Value: err.Error()})
	}
	return d, nil
}

// DiffLatest diffs the two most recent exchanges recorded for url.
func (j *Journal) DiffLatest(ctx context.Context, url string) (*DiffResult, error) {
	history, err := j.History(ctx, url, 2)
	if err != nil {
		return nil, err
	}
	if len(history) < 2 {
		return nil, fmt.Errorf("%w: need two exchanges for %s, have %d", ErrExchangeNotFound, url, len(history))
	}
	return j.Diff(ctx, history[1].ID, history[0].ID)
}

func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}
