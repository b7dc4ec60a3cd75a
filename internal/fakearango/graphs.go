package fakearango

import (
	"net/http"
	"slices"

	"github.com/raysh454/goarango/internal/logging"
	"github.com/raysh454/goarango/internal/protocol"
)

const (
	kindVertex = "vertex"
	kindEdge   = "edge"
)

// withGraph resolves the request's database and graph under the store lock.
func (s *Server) withGraph(w http.ResponseWriter, r *http.Request, fn func(db *database, g *graph)) {
	s.withDatabase(w, r, func(db *database) {
		g, apiErr := db.graph(param(r, "graph"))
		if apiErr != nil {
			writeError(w, apiErr)
			return
		}
		fn(db, g)
	})
}

// prepareEdgeDefinition validates def and creates the collections it refers to.
func (s *Server) prepareEdgeDefinition(db *database, def edgeDefinition) *apiError {
	if def.Collection == "" || len(def.From) == 0 || len(def.To) == 0 {
		return errBadParameter("edge definition needs collection, from and to")
	}
	if _, apiErr := s.store.ensureCollection(db, def.Collection, collectionEdge); apiErr != nil {
		return apiErr
	}
	for _, name := range append(slices.Clone(def.From), def.To...) {
		if _, apiErr := s.store.ensureCollection(db, name, collectionDocument); apiErr != nil {
			return apiErr
		}
	}
	return nil
}

// dropOrphansInUse removes orphan entries that an edge definition now uses.
func (g *graph) dropOrphansInUse() {
	used := map[string]bool{}
	for _, d := range g.edgeDefs {
		for _, c := range append(slices.Clone(d.From), d.To...) {
			used[c] = true
		}
	}
	g.orphans = slices.DeleteFunc(g.orphans, func(c string) bool { return used[c] })
}

func (s *Server) writeGraph(w http.ResponseWriter, r *http.Request, g *graph) {
	writeResult(w, writeStatus(r), document{"graph": g.describe()})
}

func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	s.withDatabase(w, r, func(db *database) {
		names := make([]string, 0, len(db.graphs))
		for name := range db.graphs {
			names = append(names, name)
		}
		slices.Sort(names)
		out := make([]document, 0, len(names))
		for _, name := range names {
			out = append(out, db.graphs[name].describe())
		}
		writeResult(w, http.StatusOK, document{"graphs": out})
	})
}

func (s *Server) handleCreateGraph(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name              string           `json:"name"`
		EdgeDefinitions   []edgeDefinition `json:"edgeDefinitions"`
		OrphanCollections []string         `json:"orphanCollections"`
	}
	if apiErr := decodeBody(r, &body); apiErr != nil {
		writeError(w, apiErr)
		return
	}
	s.withDatabase(w, r, func(db *database) {
		if !validName(body.Name) {
			writeError(w, newAPIError(http.StatusBadRequest, protocol.ErrNumIllegalName, "illegal name"))
			return
		}
		if _, ok := db.graphs[body.Name]; ok {
			writeError(w, newAPIError(http.StatusConflict, protocol.ErrNumGraphDuplicate, "graph already exists"))
			return
		}
		seen := map[string]bool{}
		for _, def := range body.EdgeDefinitions {
			if seen[def.Collection] {
				writeError(w, newAPIError(http.StatusBadRequest, protocol.ErrNumGraphCollectionMultiUse,
					"multi use of edge collection in edge def"))
				return
			}
			seen[def.Collection] = true
			if apiErr := s.prepareEdgeDefinition(db, def); apiErr != nil {
				writeError(w, apiErr)
				return
			}
		}
		for _, name := range body.OrphanCollections {
			if _, apiErr := s.store.ensureCollection(db, name, collectionDocument); apiErr != nil {
				writeError(w, apiErr)
				return
			}
		}

		g := &graph{
			name:     body.Name,
			edgeDefs: body.EdgeDefinitions,
			orphans:  slices.Clone(body.OrphanCollections),
			rev:      s.store.nextRev(),
		}
		g.dropOrphansInUse()
		db.graphs[g.name] = g
		s.logger.Info("created graph",
			logging.Field{Key: "database", Value: db.name},
			logging.Field{Key: "name", Value: g.name})
		s.writeGraph(w, r, g)
	})
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	s.withGraph(w, r, func(_ *database, g *graph) {
		writeResult(w, http.StatusOK, document{"graph": g.describe()})
	})
}

func (s *Server) handleDeleteGraph(w http.ResponseWriter, r *http.Request) {
	s.withGraph(w, r, func(db *database, g *graph) {
		delete(db.graphs, g.name)
		if queryBool(r, protocol.ParamDropCollections, false) {
			for _, name := range append(g.vertexCollections(), g.edgeCollections()...) {
				db.dropCollectionIfUnused(name)
			}
		}
		writeResult(w, writeStatus(r), document{"removed": true})
	})
}

func (s *Server) handleListVertexCollections(w http.ResponseWriter, r *http.Request) {
	s.withGraph(w, r, func(_ *database, g *graph) {
		writeResult(w, http.StatusOK, document{"collections": g.vertexCollections()})
	})
}

func (s *Server) handleAddVertexCollection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Collection string `json:"collection"`
	}
	if apiErr := decodeBody(r, &body); apiErr != nil {
		writeError(w, apiErr)
		return
	}
	s.withGraph(w, r, func(db *database, g *graph) {
		if body.Collection == "" {
			writeError(w, errBadParameter("collection is required"))
			return
		}
		if slices.Contains(g.vertexCollections(), body.Collection) {
			writeError(w, newAPIError(http.StatusBadRequest, protocol.ErrNumGraphCollectionMultiUse,
				"collection already used in graph"))
			return
		}
		if _, apiErr := s.store.ensureCollection(db, body.Collection, collectionDocument); apiErr != nil {
			writeError(w, apiErr)
			return
		}
		g.orphans = append(g.orphans, body.Collection)
		g.rev = s.store.nextRev()
		s.writeGraph(w, r, g)
	})
}

func (s *Server) handleRemoveVertexCollection(w http.ResponseWriter, r *http.Request) {
	name := param(r, "collection")
	s.withGraph(w, r, func(db *database, g *graph) {
		if !slices.Contains(g.orphans, name) {
			if slices.Contains(g.vertexCollections(), name) {
				writeError(w, newAPIError(http.StatusBadRequest, protocol.ErrNumNotInOrphanCollection,
					"not in orphan collection"))
				return
			}
			writeError(w, newAPIError(http.StatusNotFound, protocol.ErrNumVertexColNotUsed,
				"vertex collection not used in graph"))
			return
		}
		g.orphans = slices.DeleteFunc(g.orphans, func(c string) bool { return c == name })
		g.rev = s.store.nextRev()
		if queryBool(r, protocol.ParamDropCollection, false) {
			db.dropCollectionIfUnused(name)
		}
		s.writeGraph(w, r, g)
	})
}

func (s *Server) handleListEdgeDefinitions(w http.ResponseWriter, r *http.Request) {
	s.withGraph(w, r, func(_ *database, g *graph) {
		writeResult(w, http.StatusOK, document{"collections": g.edgeCollections()})
	})
}

func (s *Server) handleAddEdgeDefinition(w http.ResponseWriter, r *http.Request) {
	var def edgeDefinition
	if apiErr := decodeBody(r, &def); apiErr != nil {
		writeError(w, apiErr)
		return
	}
	s.withGraph(w, r, func(db *database, g *graph) {
		if _, ok := g.edgeDefinition(def.Collection); ok {
			writeError(w, newAPIError(http.StatusBadRequest, protocol.ErrNumGraphCollectionMultiUse,
				"multi use of edge collection in edge def"))
			return
		}
		if apiErr := s.prepareEdgeDefinition(db, def); apiErr != nil {
			writeError(w, apiErr)
			return
		}
		g.edgeDefs = append(g.edgeDefs, def)
		g.dropOrphansInUse()
		g.rev = s.store.nextRev()
		s.writeGraph(w, r, g)
	})
}

func (s *Server) handleReplaceEdgeDefinition(w http.ResponseWriter, r *http.Request) {
	var def edgeDefinition
	if apiErr := decodeBody(r, &def); apiErr != nil {
		writeError(w, apiErr)
		return
	}
	name := param(r, "collection")
	s.withGraph(w, r, func(db *database, g *graph) {
		i, ok := g.edgeDefinition(name)
		if !ok {
			writeError(w, newAPIError(http.StatusNotFound, protocol.ErrNumEdgeColNotUsed,
				"edge collection not used in graph"))
			return
		}
		if def.Collection != name {
			writeError(w, errBadParameter("edge definition %q does not match %q", def.Collection, name))
			return
		}
		if apiErr := s.prepareEdgeDefinition(db, def); apiErr != nil {
			writeError(w, apiErr)
			return
		}
		before := g.vertexCollections()
		g.edgeDefs[i] = def
		g.keepAsOrphans(before)
		g.rev = s.store.nextRev()
		s.writeGraph(w, r, g)
	})
}

func (s *Server) handleRemoveEdgeDefinition(w http.ResponseWriter, r *http.Request) {
	name := param(r, "collection")
	s.withGraph(w, r, func(db *database, g *graph) {
		i, ok := g.edgeDefinition(name)
		if !ok {
			writeError(w, newAPIError(http.StatusNotFound, protocol.ErrNumEdgeColNotUsed,
				"edge collection not used in graph"))
			return
		}
		before := g.vertexCollections()
		g.edgeDefs = slices.Delete(g.edgeDefs, i, i+1)
		g.keepAsOrphans(before)
		g.rev = s.store.nextRev()
		if queryBool(r, protocol.ParamDropCollection, false) {
			db.dropCollectionIfUnused(name)
		}
		s.writeGraph(w, r, g)
	})
}

// keepAsOrphans turns vertex collections that lost their last edge
// definition into orphans.
func (g *graph) keepAsOrphans(before []string) {
	now := g.vertexCollections()
	for _, c := range before {
		if !slices.Contains(now, c) {
			g.orphans = append(g.orphans, c)
		}
	}
}

// withElementCollection resolves the graph and checks that the collection
// named in the path belongs to it as kind.
func (s *Server) withElementCollection(w http.ResponseWriter, r *http.Request, kind string, fn func(c *collection)) {
	s.withGraph(w, r, func(db *database, g *graph) {
		name := param(r, "collection")
		if kind == kindVertex && !slices.Contains(g.vertexCollections(), name) {
			writeError(w, newAPIError(http.StatusNotFound, protocol.ErrNumVertexColNotUsed,
				"vertex collection not used in graph"))
			return
		}
		if kind == kindEdge && !slices.Contains(g.edgeCollections(), name) {
			writeError(w, newAPIError(http.StatusNotFound, protocol.ErrNumEdgeColNotUsed,
				"edge collection not used in graph"))
			return
		}
		c, apiErr := db.collection(name)
		if apiErr != nil {
			writeError(w, apiErr)
			return
		}
		fn(c)
	})
}

func (s *Server) handleCreateElement(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body document
		if apiErr := decodeBody(r, &body); apiErr != nil {
			writeError(w, apiErr)
			return
		}
		s.withElementCollection(w, r, kind, func(c *collection) {
			doc, apiErr := s.store.insert(c, body)
			if apiErr != nil {
				writeError(w, apiErr)
				return
			}
			m, extra := outcome(r, nil, doc)
			setEtag(w, m)
			extra[kind] = m
			writeResult(w, writeStatus(r), extra)
		})
	}
}

func (s *Server) handleGetElement(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.withElementCollection(w, r, kind, func(c *collection) {
			doc, apiErr := c.lookup(param(r, "key"), ifMatch(r))
			if apiErr != nil {
				writeError(w, apiErr)
				return
			}
			setEtag(w, doc)
			if rev := ifNoneMatch(r); rev != "" && rev == doc["_rev"] {
				w.WriteHeader(http.StatusNotModified)
				return
			}
			writeResult(w, http.StatusOK, document{kind: doc})
		})
	}
}

func (s *Server) handleModifyElement(kind string, replace bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body document
		if apiErr := decodeBody(r, &body); apiErr != nil {
			writeError(w, apiErr)
			return
		}
		s.withElementCollection(w, r, kind, func(c *collection) {
			old, doc, apiErr := s.store.modify(c, param(r, "key"), ifMatch(r), body, replace,
				queryBool(r, protocol.ParamKeepNull, true), true)
			if apiErr != nil {
				writeError(w, apiErr)
				return
			}
			m, extra := outcome(r, old, doc)
			setEtag(w, m)
			extra[kind] = m
			writeResult(w, writeStatus(r), extra)
		})
	}
}

func (s *Server) handleDeleteElement(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.withElementCollection(w, r, kind, func(c *collection) {
			old, apiErr := c.remove(param(r, "key"), ifMatch(r))
			if apiErr != nil {
				writeError(w, apiErr)
				return
			}
			_, extra := outcome(r, old, nil)
			extra["removed"] = true
			status := http.StatusAccepted
			if queryBool(r, protocol.ParamWaitForSync, false) {
				status = http.StatusOK
			}
			writeResult(w, status, extra)
		})
	}
}
