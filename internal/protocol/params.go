package protocol

import (
	"strconv"
	"strings"
)

// Parameter names as the server spells them. Names with a capital first
// letter travel as headers, the rest as query string or body attributes.
const (
	ParamWaitForSync       = "waitForSync"
	ParamIfMatch           = "If-Match"
	ParamIfNoneMatch       = "If-None-Match"
	ParamKeepNull          = "keepNull"
	ParamMergeObjects      = "mergeObjects"
	ParamReturnNew         = "returnNew"
	ParamReturnOld         = "returnOld"
	ParamSilent            = "silent"
	ParamJournalSize       = "journalSize"
	ParamDoCompact         = "doCompact"
	ParamIsSystem          = "isSystem"
	ParamIsVolatile        = "isVolatile"
	ParamType              = "type"
	ParamDropCollections   = "dropCollections"
	ParamDropCollection    = "dropCollection"
	ParamExcludeSystem     = "excludeSystem"
	ParamName              = "name"
	ParamCollection        = "collection"
	ParamFrom              = "from"
	ParamTo                = "to"
	ParamEdgeDefinitions   = "edgeDefinitions"
	ParamOrphanCollections = "orphanCollections"
	ParamQuery             = "query"
	ParamBindVars          = "bindVars"
	ParamCount             = "count"
	ParamBatchSize         = "batchSize"
	ParamTTL               = "ttl"
)

// Parameters collects the optional values set through fluent builder calls
// before an operation runs. The zero value is not usable; use NewParameters.
type Parameters map[string]any

func NewParameters() Parameters {
	return make(Parameters)
}

func (p Parameters) String(name, value string) { p[name] = value }
func (p Parameters) Bool(name string, value bool) { p[name] = value }
func (p Parameters) Int64(name string, value int64) { p[name] = value }
func (p Parameters) List(name string, values []string) {
	p[name] = append([]string(nil), values...)
}

// Set stores an arbitrary value, used for body-only attributes.
func (p Parameters) Set(name string, value any) { p[name] = value }

func (p Parameters) Has(name string) bool {
	_, ok := p[name]
	return ok
}

func (p Parameters) Get(name string) (any, bool) {
	v, ok := p[name]
	return v, ok
}

// Format renders a parameter for a query string or header. Booleans are
// lower-case and lists are comma separated.
func (p Parameters) Format(name string) (string, bool) {
	v, ok := p[name]
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case []string:
		return strings.Join(t, ","), true
	default:
		return "", false
	}
}

// Clear drops every parameter; operations call it once they have run.
func (p Parameters) Clear() {
	for k := range p {
		delete(p, k)
	}
}
