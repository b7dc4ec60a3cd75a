package fakearango

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/raysh454/goarango/internal/protocol"
)

// The emulator understands three query shapes:
//
//	FOR i IN 1..10 RETURN i
//	FOR d IN coll [FILTER d.attr == value] [LIMIT n] RETURN d[.attr]
//	RETURN value
//
// where coll may be @@bind and value a JSON literal or @bind.
var (
	aqlRange   = regexp.MustCompile(`(?is)^\s*FOR\s+(\w+)\s+IN\s+(-?\d+)\s*\.\.\s*(-?\d+)\s+RETURN\s+(\w+)\s*$`)
	aqlForEach = regexp.MustCompile(`(?is)^\s*FOR\s+(\w+)\s+IN\s+(@@\w+|\w+)` +
		`(?:\s+FILTER\s+(\w+)\.(\w+)\s*==\s*(@\w+|"[^"]*"|-?\d+(?:\.\d+)?|true|false|null))?` +
		`(?:\s+LIMIT\s+(\d+))?` +
		`\s+RETURN\s+(\w+)(?:\.(\w+))?\s*$`)
	aqlReturn = regexp.MustCompile(`(?is)^\s*RETURN\s+(.+?)\s*$`)
)

func parseError(query string) *apiError {
	return newAPIError(http.StatusBadRequest, protocol.ErrNumQueryParse,
		"syntax error, unexpected query near '%s'", strings.TrimSpace(query))
}

func bindValue(token string, vars map[string]any) (any, *apiError) {
	if name, ok := strings.CutPrefix(token, "@"); ok {
		v, found := vars[name]
		if !found {
			return nil, newAPIError(http.StatusBadRequest, protocol.ErrNumQueryBindMissing,
				"bind parameter '%s' was not declared in the query", name)
		}
		return v, nil
	}
	var v any
	if err := json.Unmarshal([]byte(token), &v); err != nil {
		return nil, errBadParameter("invalid literal %s", token)
	}
	return v, nil
}

// runQuery evaluates query against db.
func runQuery(db *database, query string, vars map[string]any) ([]any, *apiError) {
	if m := aqlRange.FindStringSubmatch(query); m != nil {
		if m[1] != m[4] {
			return nil, parseError(query)
		}
		from, _ := strconv.Atoi(m[2])
		to, _ := strconv.Atoi(m[3])
		out := []any{}
		for i := from; i <= to; i++ {
			out = append(out, i)
		}
		return out, nil
	}

	if m := aqlForEach.FindStringSubmatch(query); m != nil {
		return forEach(db, query, m, vars)
	}

	if m := aqlReturn.FindStringSubmatch(query); m != nil {
		v, apiErr := bindValue(m[1], vars)
		if apiErr != nil {
			return nil, apiErr
		}
		return []any{v}, nil
	}
	return nil, parseError(query)
}

func forEach(db *database, query string, m []string, vars map[string]any) ([]any, *apiError) {
	variable, source := m[1], m[2]
	filterVar, filterAttr, filterValue := m[3], m[4], m[5]
	limit, returnVar, returnAttr := m[6], m[7], m[8]

	if returnVar != variable || (filterVar != "" && filterVar != variable) {
		return nil, parseError(query)
	}
	if name, ok := strings.CutPrefix(source, "@@"); ok {
		v, found := vars["@"+name]
		coll, isString := v.(string)
		if !found || !isString {
			return nil, newAPIError(http.StatusBadRequest, protocol.ErrNumQueryBindMissing,
				"bind parameter '@%s' was not declared in the query", name)
		}
		source = coll
	}
	c, apiErr := db.collection(source)
	if apiErr != nil {
		return nil, apiErr
	}

	var want any
	if filterVar != "" {
		if want, apiErr = bindValue(filterValue, vars); apiErr != nil {
			return nil, apiErr
		}
	}
	maxItems := -1
	if limit != "" {
		maxItems, _ = strconv.Atoi(limit)
	}

	out := []any{}
	for _, doc := range c.all() {
		if maxItems >= 0 && len(out) >= maxItems {
			break
		}
		if filterVar != "" && !jsonEqual(doc[filterAttr], want) {
			continue
		}
		if returnAttr != "" {
			out = append(out, doc[returnAttr])
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

// jsonEqual compares values as their JSON encodings, so 1 and 1.0 match.
func jsonEqual(a, b any) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ab) == string(bb)
}
