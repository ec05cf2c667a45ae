// Package docstore provides a minimal document-store abstraction: named
// collections of schema-less documents addressed by store-generated ids,
// with equality-filtered queries and merge updates.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a document id does not exist in a collection.
var ErrNotFound = errors.New("document not found")

// Fields is the schema-less payload of a document.
type Fields map[string]any

// Document is a stored payload together with its generated id.
type Document struct {
	ID     string
	Fields Fields
}

// Store is the persistence interface the handlers program against.
// FindEqual matches documents where every filter field equals the given
// value (logical AND). Update merges the given fields into the document.
// Delete is idempotent: deleting a missing id is not an error.
type Store interface {
	Add(ctx context.Context, collection string, fields Fields) (string, error)
	GetAll(ctx context.Context, collection string) ([]Document, error)
	GetByID(ctx context.Context, collection, id string) (Document, error)
	FindEqual(ctx context.Context, collection string, filter Fields) ([]Document, error)
	Update(ctx context.Context, collection, id string, fields Fields) error
	Delete(ctx context.Context, collection, id string) error
}

// decodeFields unmarshals a JSON document body. Numbers decode as
// json.Number so numeric fields round-trip without float drift.
func decodeFields(data []byte) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields Fields
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("failed to decode document fields: %w", err)
	}
	return fields, nil
}
