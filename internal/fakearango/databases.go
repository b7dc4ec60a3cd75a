package fakearango

import (
	"net/http"
	"slices"
	"strings"

	"github.com/raysh454/goarango/internal/logging"
	"github.com/raysh454/goarango/internal/protocol"
)

func (s *Server) handleListDatabases(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, apiErr := s.store.database(databaseName(r)); apiErr != nil {
		writeError(w, apiErr)
		return
	}
	names := make([]string, 0, len(s.store.databases))
	for name := range s.store.databases {
		names = append(names, name)
	}
	slices.Sort(names)
	writeResult(w, http.StatusOK, document{"result": names})
}

func (s *Server) handleCurrentDatabase(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	db, apiErr := s.store.database(databaseName(r))
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}
	writeResult(w, http.StatusOK, document{"result": document{
		"id":       db.id,
		"name":     db.name,
		"path":     "/var/lib/arangodb3/databases/database-" + db.id,
		"isSystem": db.name == systemDatabase,
	}})
}

func (s *Server) handleCreateDatabase(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if apiErr := decodeBody(r, &body); apiErr != nil {
		writeError(w, apiErr)
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if databaseName(r) != systemDatabase {
		writeError(w, newAPIError(http.StatusForbidden, protocol.ErrNumUseSystemDatabase,
			"operation only allowed in system database"))
		return
	}
	if !validName(body.Name) || strings.HasPrefix(body.Name, "_") {
		writeError(w, newAPIError(http.StatusBadRequest, protocol.ErrNumIllegalName, "illegal name"))
		return
	}
	if _, ok := s.store.databases[body.Name]; ok {
		writeError(w, newAPIError(http.StatusConflict, protocol.ErrNumDuplicateName, "duplicate name"))
		return
	}
	s.store.createDatabase(body.Name)
	s.logger.Info("created database", logging.Field{Key: "name", Value: body.Name})
	writeResult(w, http.StatusCreated, document{"result": true})
}

func (s *Server) handleDropDatabase(w http.ResponseWriter, r *http.Request) {
	name := param(r, "name")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if databaseName(r) != systemDatabase || name == systemDatabase {
		writeError(w, newAPIError(http.StatusForbidden, protocol.ErrNumUseSystemDatabase,
			"operation only allowed in system database"))
		return
	}
	if _, apiErr := s.store.database(name); apiErr != nil {
		writeError(w, apiErr)
		return
	}
	delete(s.store.databases, name)
	writeResult(w, http.StatusOK, document{"result": true})
}
