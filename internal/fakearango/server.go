// Package fakearango is an in-memory emulator of the ArangoDB HTTP API
// subset the client speaks: databases, collections, documents, general
// graphs and AQL cursors.
package fakearango

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/raysh454/goarango/internal/logging"
	"github.com/raysh454/goarango/internal/protocol"
)

// Server is the emulator's HTTP surface.
type Server struct {
	cfg    Config
	router chi.Router
	store  *store
	logger logging.Logger
	now    func() time.Time
}

// NewServer creates an emulator holding only the _system database.
func NewServer(cfg Config) *Server {
	d := DefaultConfig()
	if cfg.Version == "" {
		cfg.Version = d.Version
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = d.BatchSize
	}
	if cfg.CursorTTL <= 0 {
		cfg.CursorTTL = d.CursorTTL
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = d.ListenAddr
	}

	s := &Server{
		cfg:    cfg,
		router: chi.NewRouter(),
		store:  newStore(),
		logger: logging.OrNop(cfg.Logger).With(logging.Field{Key: "component", Value: "fakearango"}),
		now:    time.Now,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.authMiddleware)

	s.apiRoutes(r)
	r.Route("/_db/{db}", s.apiRoutes)
}

func (s *Server) apiRoutes(r chi.Router) {
	r.Get("/_api/version", s.handleVersion)

	// Databases
	r.Get("/_api/database", s.handleListDatabases)
	r.Get("/_api/database/user", s.handleListDatabases)
	r.Get("/_api/database/current", s.handleCurrentDatabase)
	r.Post("/_api/database", s.handleCreateDatabase)
	r.Delete("/_api/database/{name}", s.handleDropDatabase)

	// Collections
	r.Get("/_api/collection", s.handleListCollections)
	r.Post("/_api/collection", s.handleCreateCollection)
	r.Get("/_api/collection/{name}", s.handleGetCollection)
	r.Get("/_api/collection/{name}/properties", s.handleGetCollection)
	r.Get("/_api/collection/{name}/count", s.handleCountCollection)
	r.Put("/_api/collection/{name}/truncate", s.handleTruncateCollection)
	r.Delete("/_api/collection/{name}", s.handleDropCollection)

	// Documents
	r.Post("/_api/document/{collection}", s.handleCreateDocument)
	r.Get("/_api/document/{collection}/{key}", s.handleGetDocument)
	r.Head("/_api/document/{collection}/{key}", s.handleGetDocument)
	r.Patch("/_api/document/{collection}/{key}", s.handleUpdateDocument)
	r.Put("/_api/document/{collection}/{key}", s.handleReplaceDocument)
	r.Delete("/_api/document/{collection}/{key}", s.handleDeleteDocument)

	// Graphs
	r.Get("/_api/gharial", s.handleListGraphs)
	r.Post("/_api/gharial", s.handleCreateGraph)
	r.Get("/_api/gharial/{graph}", s.handleGetGraph)
	r.Delete("/_api/gharial/{graph}", s.handleDeleteGraph)
	r.Get("/_api/gharial/{graph}/vertex", s.handleListVertexCollections)
	r.Post("/_api/gharial/{graph}/vertex", s.handleAddVertexCollection)
	r.Delete("/_api/gharial/{graph}/vertex/{collection}", s.handleRemoveVertexCollection)
	r.Get("/_api/gharial/{graph}/edge", s.handleListEdgeDefinitions)
	r.Post("/_api/gharial/{graph}/edge", s.handleAddEdgeDefinition)
	r.Put("/_api/gharial/{graph}/edge/{collection}", s.handleReplaceEdgeDefinition)
	r.Delete("/_api/gharial/{graph}/edge/{collection}", s.handleRemoveEdgeDefinition)
	for _, kind := range []string{kindVertex, kindEdge} {
		base := "/_api/gharial/{graph}/" + kind + "/{collection}"
		r.Post(base, s.handleCreateElement(kind))
		r.Get(base+"/{key}", s.handleGetElement(kind))
		r.Patch(base+"/{key}", s.handleModifyElement(kind, false))
		r.Put(base+"/{key}", s.handleModifyElement(kind, true))
		r.Delete(base+"/{key}", s.handleDeleteElement(kind))
	}

	// Cursors
	r.Post("/_api/cursor", s.handleCreateCursor)
	r.Put("/_api/cursor/{id}", s.handleNextBatch)
	r.Post("/_api/cursor/{id}", s.handleNextBatch)
	r.Delete("/_api/cursor/{id}", s.handleDeleteCursor)
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Username == "" || s.cfg.Password == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(user), []byte(s.cfg.Username)) != 1 ||
			subtle.ConstantTimeCompare([]byte(pass), []byte(s.cfg.Password)) != 1 {
			w.Header().Set("Www-Authenticate", `Basic realm="ArangoDB"`)
			writeError(w, newAPIError(http.StatusUnauthorized, protocol.ErrNumUnauthorized,
				"not authorized to execute this request"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}
	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q.Encode()})
	}
	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			fields = append(fields, logging.Field{Key: "body_bytes", Value: len(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}
	s.logger.Debug("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// --- request helpers ---

// param returns a decoded path parameter. chi matches on RawPath when the
// request has one, leaving its parameters escaped; otherwise they come from
// the already decoded Path and must not be unescaped again.
func param(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func databaseName(r *http.Request) string {
	if db := param(r, "db"); db != "" {
		return db
	}
	return systemDatabase
}

func queryBool(r *http.Request, name string, def bool) bool {
	switch r.URL.Query().Get(name) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return def
	}
}

// writeStatus is 201 for synced writes and 202 otherwise.
func writeStatus(r *http.Request) int {
	if queryBool(r, protocol.ParamWaitForSync, false) {
		return http.StatusCreated
	}
	return http.StatusAccepted
}

func decodeBody(r *http.Request, v any) *apiError {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadParameter("invalid JSON body: %v", err)
	}
	return nil
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeResult adds the error and code attributes every ArangoDB answer carries.
func writeResult(w http.ResponseWriter, status int, body document) {
	body["error"] = false
	body["code"] = status
	writeJSON(w, status, body)
}

func writeError(w http.ResponseWriter, e *apiError) {
	body := document{
		"error":        true,
		"code":         e.Status,
		"errorNum":     e.Num,
		"errorMessage": e.Message,
	}
	for k, v := range e.Meta {
		body[k] = v
	}
	if e.Meta != nil {
		if rev, ok := e.Meta["_rev"].(string); ok {
			w.Header().Set("Etag", `"`+rev+`"`)
		}
	}
	writeJSON(w, e.Status, body)
}

// --- version ---

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, document{
		"server":  "arango",
		"version": s.cfg.Version,
		"license": "community",
	})
}
