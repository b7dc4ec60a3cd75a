package arango

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
)

// ToDocument converts v into a Document. v may be a Document, a struct with
// JSON tags, a JSON string, a []byte or a json.RawMessage.
func ToDocument(v any) (Document, error) {
	var raw []byte
	switch t := v.(type) {
	case nil:
		return Document{}, nil
	case Document:
		if t == nil {
			return Document{}, nil
		}
		return maps.Clone(t), nil
	case string:
		raw = []byte(t)
	case []byte:
		raw = t
	case json.RawMessage:
		raw = t
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode document: %w", err)
		}
		raw = b
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// splitHandle splits "collection/key" into its parts.
func splitHandle(id string) (collection, key string, err error) {
	collection, key, ok := strings.Cut(id, "/")
	if !ok || collection == "" || key == "" || strings.Contains(key, "/") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidDocumentID, id)
	}
	return collection, key, nil
}

// keyIn resolves id against collection. id may be a bare key or a handle
// naming the same collection.
func keyIn(collection, id string) (string, error) {
	if !strings.Contains(id, "/") {
		if id == "" {
			return "", fmt.Errorf("%w: empty key", ErrInvalidDocumentID)
		}
		return id, nil
	}
	coll, key, err := splitHandle(id)
	if err != nil {
		return "", err
	}
	if coll != collection {
		return "", fmt.Errorf("%w: %q is not in collection %q", ErrInvalidDocumentID, id, collection)
	}
	return key, nil
}
