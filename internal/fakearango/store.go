package fakearango

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/raysh454/goarango/internal/protocol"
)

const (
	systemDatabase = "_system"

	collectionDocument = 2
	collectionEdge     = 3
)

type document = map[string]any

// apiError is rendered as an ArangoDB error body.
type apiError struct {
	Status  int
	Num     int
	Message string
	// Meta carries _id, _key and _rev on revision conflicts.
	Meta document
}

func (e *apiError) Error() string { return e.Message }

func newAPIError(status, num int, format string, args ...any) *apiError {
	return &apiError{Status: status, Num: num, Message: fmt.Sprintf(format, args...)}
}

func errBadParameter(format string, args ...any) *apiError {
	return newAPIError(http.StatusBadRequest, protocol.ErrNumBadParameter, format, args...)
}

type collection struct {
	id          string
	name        string
	typ         int
	waitForSync bool
	isSystem    bool
	docs        map[string]document
	keys        []string
}

func (c *collection) describe() document {
	return document{
		"id":          c.id,
		"name":        c.name,
		"type":        c.typ,
		"status":      3,
		"isSystem":    c.isSystem,
		"waitForSync": c.waitForSync,
	}
}

type edgeDefinition struct {
	Collection string   `json:"collection"`
	From       []string `json:"from"`
	To         []string `json:"to"`
}

type graph struct {
	name     string
	edgeDefs []edgeDefinition
	orphans  []string
	rev      string
}

func (g *graph) describe() document {
	defs := g.edgeDefs
	if defs == nil {
		defs = []edgeDefinition{}
	}
	orphans := g.orphans
	if orphans == nil {
		orphans = []string{}
	}
	return document{
		"_id":               "_graphs/" + g.name,
		"_key":              g.name,
		"_rev":              g.rev,
		"name":              g.name,
		"edgeDefinitions":   defs,
		"orphanCollections": orphans,
	}
}

// vertexCollections lists every collection an edge definition or the orphan
// list refers to.
func (g *graph) vertexCollections() []string {
	set := map[string]struct{}{}
	for _, d := range g.edgeDefs {
		for _, c := range d.From {
			set[c] = struct{}{}
		}
		for _, c := range d.To {
			set[c] = struct{}{}
		}
	}
	for _, c := range g.orphans {
		set[c] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}

func (g *graph) edgeCollections() []string {
	out := make([]string, 0, len(g.edgeDefs))
	for _, d := range g.edgeDefs {
		out = append(out, d.Collection)
	}
	slices.Sort(out)
	return out
}

func (g *graph) edgeDefinition(name string) (int, bool) {
	for i, d := range g.edgeDefs {
		if d.Collection == name {
			return i, true
		}
	}
	return -1, false
}

type database struct {
	id          string
	name        string
	collections map[string]*collection
	graphs      map[string]*graph
}

type cursor struct {
	id        string
	items     []any
	batchSize int
	count     int
	withCount bool
	ttl       time.Duration
	expires   time.Time
}

// store holds every database. Callers hold mu for the whole request.
type store struct {
	mu        sync.Mutex
	seq       uint64
	databases map[string]*database
	cursors   map[string]*cursor
}

func newStore() *store {
	s := &store{
		databases: map[string]*database{},
		cursors:   map[string]*cursor{},
	}
	s.createDatabase(systemDatabase)
	return s
}

func (s *store) next() uint64 {
	s.seq++
	return s.seq
}

func (s *store) nextRev() string {
	return "_" + strconv.FormatUint(s.next(), 36)
}

func (s *store) createDatabase(name string) *database {
	db := &database{
		id:          strconv.FormatUint(s.next(), 10),
		name:        name,
		collections: map[string]*collection{},
		graphs:      map[string]*graph{},
	}
	s.databases[name] = db
	return db
}

func (s *store) database(name string) (*database, *apiError) {
	if name == "" {
		name = systemDatabase
	}
	db, ok := s.databases[name]
	if !ok {
		return nil, newAPIError(http.StatusNotFound, protocol.ErrNumDatabaseNotFound, "database not found")
	}
	return db, nil
}

func validName(name string) bool {
	if name == "" || len(name) > 256 {
		return false
	}
	return !strings.ContainsAny(name, "/ ")
}

func (s *store) createCollection(db *database, name string, typ int, waitForSync bool) (*collection, *apiError) {
	if !validName(name) {
		return nil, newAPIError(http.StatusBadRequest, protocol.ErrNumIllegalName, "illegal name")
	}
	if _, ok := db.collections[name]; ok {
		return nil, newAPIError(http.StatusConflict, protocol.ErrNumDuplicateName, "duplicate name")
	}
	if typ == 0 {
		typ = collectionDocument
	}
	if typ != collectionDocument && typ != collectionEdge {
		return nil, errBadParameter("invalid collection type %d", typ)
	}
	c := &collection{
		id:          strconv.FormatUint(s.next(), 10),
		name:        name,
		typ:         typ,
		waitForSync: waitForSync,
		isSystem:    strings.HasPrefix(name, "_"),
		docs:        map[string]document{},
	}
	db.collections[name] = c
	return c, nil
}

// ensureCollection returns the named collection, creating it with typ when
// it does not exist yet.
func (s *store) ensureCollection(db *database, name string, typ int) (*collection, *apiError) {
	if c, ok := db.collections[name]; ok {
		return c, nil
	}
	return s.createCollection(db, name, typ, false)
}

func (db *database) collection(name string) (*collection, *apiError) {
	c, ok := db.collections[name]
	if !ok {
		return nil, newAPIError(http.StatusNotFound, protocol.ErrNumCollectionNotFound,
			"collection or view not found: %s", name)
	}
	return c, nil
}

func (db *database) graph(name string) (*graph, *apiError) {
	g, ok := db.graphs[name]
	if !ok {
		return nil, newAPIError(http.StatusNotFound, protocol.ErrNumGraphNotFound, "graph '%s' not found", name)
	}
	return g, nil
}

func meta(doc document) document {
	return document{"_id": doc["_id"], "_key": doc["_key"], "_rev": doc["_rev"]}
}

func conflict(doc document) *apiError {
	e := newAPIError(http.StatusPreconditionFailed, protocol.ErrNumConflict, "conflict, _rev values do not match")
	e.Meta = meta(doc)
	return e
}

func (c *collection) lookup(key, ifMatch string) (document, *apiError) {
	doc, ok := c.docs[key]
	if !ok {
		return nil, newAPIError(http.StatusNotFound, protocol.ErrNumDocumentNotFound, "document not found")
	}
	if ifMatch != "" && ifMatch != doc["_rev"] {
		return doc, conflict(doc)
	}
	return doc, nil
}

func (s *store) insert(c *collection, body document) (document, *apiError) {
	doc := maps.Clone(body)
	key, _ := doc["_key"].(string)
	if key == "" {
		key = strconv.FormatUint(s.next(), 10)
	} else if strings.Contains(key, "/") {
		return nil, newAPIError(http.StatusBadRequest, protocol.ErrNumDocumentKeyBad, "illegal document key")
	}
	if _, exists := c.docs[key]; exists {
		return nil, newAPIError(http.StatusConflict, protocol.ErrNumUniqueConstraint, "unique constraint violated")
	}
	if c.typ == collectionEdge {
		from, _ := doc["_from"].(string)
		to, _ := doc["_to"].(string)
		if from == "" || to == "" {
			return nil, newAPIError(http.StatusBadRequest, protocol.ErrNumEdgeAttributeMissing, "edge attribute missing or invalid")
		}
	}
	doc["_key"] = key
	doc["_id"] = c.name + "/" + key
	doc["_rev"] = s.nextRev()
	c.docs[key] = doc
	c.keys = append(c.keys, key)
	return doc, nil
}

// modify patches or replaces a stored document and returns the old and new
// versions.
func (s *store) modify(c *collection, key, ifMatch string, body document, replace, keepNull, mergeObjects bool) (document, document, *apiError) {
	old, apiErr := c.lookup(key, ifMatch)
	if apiErr != nil {
		return nil, nil, apiErr
	}

	var doc document
	if replace {
		doc = document{}
		for k, v := range body {
			if !isSystemAttribute(k) {
				doc[k] = v
			}
		}
	} else {
		doc = maps.Clone(old)
		mergePatch(doc, body, keepNull, mergeObjects)
	}
	for _, k := range []string{"_from", "_to"} {
		if v, ok := body[k]; ok && c.typ == collectionEdge {
			doc[k] = v
		} else if ov, ok := old[k]; ok {
			doc[k] = ov
		}
	}
	doc["_key"] = old["_key"]
	doc["_id"] = old["_id"]
	doc["_rev"] = s.nextRev()
	c.docs[key] = doc
	return old, doc, nil
}

func (c *collection) remove(key, ifMatch string) (document, *apiError) {
	old, apiErr := c.lookup(key, ifMatch)
	if apiErr != nil {
		return nil, apiErr
	}
	delete(c.docs, key)
	c.keys = slices.DeleteFunc(c.keys, func(k string) bool { return k == key })
	return old, nil
}

func (c *collection) truncate() {
	c.docs = map[string]document{}
	c.keys = nil
}

// all returns the documents in insertion order.
func (c *collection) all() []document {
	out := make([]document, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.docs[k])
	}
	return out
}

func isSystemAttribute(k string) bool {
	switch k {
	case "_key", "_id", "_rev", "_from", "_to":
		return true
	}
	return false
}

func mergePatch(dst, patch document, keepNull, mergeObjects bool) {
	for k, v := range patch {
		if isSystemAttribute(k) {
			continue
		}
		if v == nil && !keepNull {
			delete(dst, k)
			continue
		}
		if mergeObjects {
			pv, pok := v.(map[string]any)
			dv, dok := dst[k].(map[string]any)
			if pok && dok {
				merged := maps.Clone(dv)
				mergePatch(merged, pv, keepNull, true)
				dst[k] = merged
				continue
			}
		}
		dst[k] = v
	}
}

// dropCollectionIfUnused drops name unless another graph still refers to it.
func (db *database) dropCollectionIfUnused(name string) {
	for _, g := range db.graphs {
		if slices.Contains(g.vertexCollections(), name) || slices.Contains(g.edgeCollections(), name) {
			return
		}
	}
	delete(db.collections, name)
}
