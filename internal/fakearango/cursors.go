package fakearango

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/goarango/internal/logging"
	"github.com/raysh454/goarango/internal/protocol"
)

func (s *Server) handleCreateCursor(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query     string         `json:"query"`
		BindVars  map[string]any `json:"bindVars"`
		Count     bool           `json:"count"`
		BatchSize int            `json:"batchSize"`
		TTL       int            `json:"ttl"`
	}
	if apiErr := decodeBody(r, &body); apiErr != nil {
		writeError(w, apiErr)
		return
	}
	s.withDatabase(w, r, func(db *database) {
		if body.Query == "" {
			writeError(w, errBadParameter("query is empty"))
			return
		}
		items, apiErr := runQuery(db, body.Query, body.BindVars)
		if apiErr != nil {
			writeError(w, apiErr)
			return
		}

		c := &cursor{
			items:     items,
			batchSize: body.BatchSize,
			count:     len(items),
			withCount: body.Count,
			ttl:       time.Duration(body.TTL) * time.Second,
		}
		if c.batchSize <= 0 {
			c.batchSize = s.cfg.BatchSize
		}
		if c.ttl <= 0 {
			c.ttl = s.cfg.CursorTTL
		}
		s.logger.Debug("created cursor",
			logging.Field{Key: "database", Value: db.name},
			logging.Field{Key: "count", Value: c.count})
		s.writeBatch(w, http.StatusCreated, c)
	})
}

func (s *Server) handleNextBatch(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	c, apiErr := s.cursor(param(r, "id"))
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	s.writeBatch(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCursor(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	c, apiErr := s.cursor(param(r, "id"))
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	delete(s.store.cursors, c.id)
	writeResult(w, http.StatusAccepted, document{"id": c.id})
}

func (s *Server) cursor(id string) (*cursor, *apiError) {
	c, ok := s.store.cursors[id]
	if !ok || s.now().After(c.expires) {
		delete(s.store.cursors, id)
		return nil, newAPIError(http.StatusNotFound, protocol.ErrNumCursorNotFound, "cursor not found")
	}
	return c, nil
}

// writeBatch sends the next batch of c and keeps the cursor only while
// results remain. The caller holds the store lock.
func (s *Server) writeBatch(w http.ResponseWriter, status int, c *cursor) {
	n := min(c.batchSize, len(c.items))
	batch := c.items[:n]
	c.items = c.items[n:]
	hasMore := len(c.items) > 0

	body := document{
		"result":  batch,
		"hasMore": hasMore,
		"cached":  false,
	}
	if c.withCount {
		body["count"] = c.count
	}
	if hasMore {
		if c.id == "" {
			c.id = uuid.NewString()
			s.store.cursors[c.id] = c
		}
		c.expires = s.now().Add(c.ttl)
		body["id"] = c.id
	} else if c.id != "" {
		delete(s.store.cursors, c.id)
	}
	writeResult(w, status, body)
}
