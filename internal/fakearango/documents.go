package fakearango

import (
	"net/http"
	"strings"

	"github.com/raysh454/goarango/internal/protocol"
)

func ifMatch(r *http.Request) string {
	return strings.Trim(r.Header.Get(protocol.ParamIfMatch), `"`)
}

func ifNoneMatch(r *http.Request) string {
	return strings.Trim(r.Header.Get(protocol.ParamIfNoneMatch), `"`)
}

func setEtag(w http.ResponseWriter, doc document) {
	if rev, ok := doc["_rev"].(string); ok {
		w.Header().Set("Etag", `"`+rev+`"`)
	}
}

// outcome returns the metadata of a written document and the extra
// attributes (new, old) the request asked for. doc is nil for removals.
func outcome(r *http.Request, old, doc document) (document, document) {
	var m document
	if doc == nil {
		m = meta(old)
	} else {
		m = meta(doc)
		if old != nil {
			m["_oldRev"] = old["_rev"]
		}
	}
	extra := document{}
	if doc != nil && queryBool(r, protocol.ParamReturnNew, false) {
		extra["new"] = doc
	}
	if old != nil && queryBool(r, protocol.ParamReturnOld, false) {
		extra["old"] = old
	}
	return m, extra
}

func writeOutcome(w http.ResponseWriter, r *http.Request, status int, old, doc document) {
	m, extra := outcome(r, old, doc)
	setEtag(w, m)
	if queryBool(r, protocol.ParamSilent, false) {
		writeJSON(w, status, document{})
		return
	}
	for k, v := range extra {
		m[k] = v
	}
	writeJSON(w, status, m)
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var body document
	if apiErr := decodeBody(r, &body); apiErr != nil {
		writeError(w, apiErr)
		return
	}
	s.withDatabase(w, r, func(db *database) {
		c, apiErr := db.collection(param(r, "collection"))
		if apiErr != nil {
			writeError(w, apiErr)
			return
		}
		doc, apiErr := s.store.insert(c, body)
		if apiErr != nil {
			writeError(w, apiErr)
			return
		}
		writeOutcome(w, r, writeStatus(r), nil, doc)
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	s.withDatabase(w, r, func(db *database) {
		c, apiErr := db.collection(param(r, "collection"))
		if apiErr != nil {
			writeError(w, apiErr)
			return
		}
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
		writeJSON(w, http.StatusOK, doc)
	})
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	s.modifyDocument(w, r, false)
}

func (s *Server) handleReplaceDocument(w http.ResponseWriter, r *http.Request) {
	s.modifyDocument(w, r, true)
}

func (s *Server) modifyDocument(w http.ResponseWriter, r *http.Request, replace bool) {
	var body document
	if apiErr := decodeBody(r, &body); apiErr != nil {
		writeError(w, apiErr)
		return
	}
	s.withDatabase(w, r, func(db *database) {
		c, apiErr := db.collection(param(r, "collection"))
		if apiErr != nil {
			writeError(w, apiErr)
			return
		}
		old, doc, apiErr := s.store.modify(c, param(r, "key"), ifMatch(r), body, replace,
			queryBool(r, protocol.ParamKeepNull, true), queryBool(r, protocol.ParamMergeObjects, true))
		if apiErr != nil {
			writeError(w, apiErr)
			return
		}
		writeOutcome(w, r, writeStatus(r), old, doc)
	})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	s.withDatabase(w, r, func(db *database) {
		c, apiErr := db.collection(param(r, "collection"))
		if apiErr != nil {
			writeError(w, apiErr)
			return
		}
		old, apiErr := c.remove(param(r, "key"), ifMatch(r))
		if apiErr != nil {
			writeError(w, apiErr)
			return
		}
		status := http.StatusAccepted
		if queryBool(r, protocol.ParamWaitForSync, false) {
			status = http.StatusOK
		}
		writeOutcome(w, r, status, old, nil)
	})
}
