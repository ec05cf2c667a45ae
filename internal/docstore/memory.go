package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-memory Store used by tests and local development. It
// mirrors the Postgres implementation's semantics: generated UUID ids,
// merge updates, text-representation equality filters, idempotent deletes.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]Fields
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string]Fields)}
}

func (m *Memory) Add(ctx context.Context, collection string, fields Fields) (string, error) {
	normalized, err := normalizeFields(fields)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	docs, ok := m.collections[collection]
	if !ok {
		docs = make(map[string]Fields)
		m.collections[collection] = docs
	}

	id := uuid.New().String()
	docs[id] = normalized
	return id, nil
}

func (m *Memory) GetAll(ctx context.Context, collection string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Document, 0, len(m.collections[collection]))
	for id, fields := range m.collections[collection] {
		result = append(result, Document{ID: id, Fields: cloneFields(fields)})
	}
	return result, nil
}

func (m *Memory) GetByID(ctx context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fields, ok := m.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Fields: cloneFields(fields)}, nil
}

func (m *Memory) FindEqual(ctx context.Context, collection string, filter Fields) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Document
	for id, fields := range m.collections[collection] {
		if matchesFilter(fields, filter) {
			result = append(result, Document{ID: id, Fields: cloneFields(fields)})
		}
	}
	return result, nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, fields Fields) error {
	normalized, err := normalizeFields(fields)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range normalized {
		existing[k] = v
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.collections[collection], id)
	return nil
}

func matchesFilter(fields, filter Fields) bool {
	for k, want := range filter {
		got, ok := fields[k]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// normalizeFields round-trips through JSON so values look the way they
// would after a read from the Postgres store.
func normalizeFields(fields Fields) (Fields, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document fields: %w", err)
	}
	return decodeFields(data)
}

func cloneFields(fields Fields) Fields {
	clone := make(Fields, len(fields))
	for k, v := range fields {
		clone[k] = v
	}
	return clone
}
