package fakearango

import (
	"net/http"
	"slices"

	"github.com/raysh454/goarango/internal/logging"
)

// withDatabase resolves the request's database under the store lock.
func (s *Server) withDatabase(w http.ResponseWriter, r *http.Request, fn func(db *database)) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	db, apiErr := s.store.database(databaseName(r))
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	fn(db)
}

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	excludeSystem := queryBool(r, "excludeSystem", false)
	s.withDatabase(w, r, func(db *database) {
		names := make([]string, 0, len(db.collections))
		for name, c := range db.collections {
			if excludeSystem && c.isSystem {
				continue
			}
			names = append(names, name)
		}
		slices.Sort(names)
		out := make([]document, 0, len(names))
		for _, name := range names {
			out = append(out, db.collections[name].describe())
		}
		writeResult(w, http.StatusOK, document{"result": out})
	})
}

func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name"`
		Type        int    `json:"type"`
		WaitForSync bool   `json:"waitForSync"`
	}
	if apiErr := decodeBody(r, &body); apiErr != nil {
		writeError(w, apiErr)
		return
	}
	s.withDatabase(w, r, func(db *database) {
		c, apiErr := s.store.createCollection(db, body.Name, body.Type, body.WaitForSync)
		if apiErr != nil {
			writeError(w, apiErr)
			return
		}
		s.logger.Info("created collection",
			logging.Field{Key: "database", Value: db.name},
			logging.Field{Key: "name", Value: c.name})
		writeResult(w, http.StatusOK, c.describe())
	})
}

func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	s.withDatabase(w, r, func(db *database) {
		c, apiErr := db.collection(param(r, "name"))
		if apiErr != nil {
			writeError(w, apiErr)
			return
		}
		writeResult(w, http.StatusOK, c.describe())
	})
}

func (s *Server) handleCountCollection(w http.ResponseWriter, r *http.Request) {
	s.withDatabase(w, r, func(db *database) {
		c, apiErr := db.collection(param(r, "name"))
		if apiErr != nil {
			writeError(w, apiErr)
			return
		}
		body := c.describe()
		body["count"] = len(c.docs)
		writeResult(w, http.StatusOK, body)
	})
}

func (s *Server) handleTruncateCollection(w http.ResponseWriter, r *http.Request) {
	s.withDatabase(w, r, func(db *database) {
		c, apiErr := db.collection(param(r, "name"))
		if apiErr != nil {
			writeError(w, apiErr)
			return
		}
		c.truncate()
		writeResult(w, http.StatusOK, c.describe())
	})
}

func (s *Server) handleDropCollection(w http.ResponseWriter, r *http.Request) {
	s.withDatabase(w, r, func(db *database) {
		c, apiErr := db.collection(param(r, "name"))
		if apiErr != nil {
			writeError(w, apiErr)
			return
		}
		delete(db.collections, c.name)
		writeResult(w, http.StatusOK, document{"id": c.id})
	})
}
