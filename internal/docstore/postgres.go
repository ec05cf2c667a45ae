package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// document is the single table backing every collection. Payloads live in a
// jsonb column so collections stay schema-less.
type document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID         uuid.UUID       `bun:"id,pk,type:uuid"`
	Collection string          `bun:"collection,notnull"`
	Data       json.RawMessage `bun:"data,type:jsonb,notnull"`
	CreatedAt  time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Postgres implements Store on top of a jsonb documents table.
type Postgres struct {
	db *bun.DB
}

func NewPostgres(db *bun.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the documents table if it does not exist.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*document)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

// Add stores a new document and returns its generated id.
func (s *Postgres) Add(ctx context.Context, collection string, fields Fields) (string, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode document fields: %w", err)
	}

	doc := &document{
		ID:         uuid.New(),
		Collection: collection,
		Data:       data,
	}

	_, err = s.db.NewInsert().
		Model(doc).
		Exec(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to add document: %w", err)
	}

	return doc.ID.String(), nil
}

// GetAll returns every document in the collection. No ordering guarantee,
// no pagination.
func (s *Postgres) GetAll(ctx context.Context, collection string) ([]Document, error) {
	var docs []document
	err := s.db.NewSelect().
		Model(&docs).
		Where("collection = ?", collection).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return mapDocuments(docs)
}

// GetByID returns a single document or ErrNotFound.
func (s *Postgres) GetByID(ctx context.Context, collection, id string) (Document, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return Document{}, ErrNotFound
	}

	doc := new(document)
	err = s.db.NewSelect().
		Model(doc).
		Where("id = ?", docID).
		Where("collection = ?", collection).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("failed to get document: %w", err)
	}

	fields, err := decodeFields(doc.Data)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: doc.ID.String(), Fields: fields}, nil
}

// FindEqual returns documents matching every filter field by equality.
// Filters compare the jsonb text representation, so string fields match
// exactly and numeric fields match their literal form.
func (s *Postgres) FindEqual(ctx context.Context, collection string, filter Fields) ([]Document, error) {
	var docs []document
	q := s.db.NewSelect().
		Model(&docs).
		Where("collection = ?", collection)

	for field, value := range filter {
		q = q.Where("d.data ->> ? = ?", field, fmt.Sprint(value))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}

	return mapDocuments(docs)
}

// Update merges the given fields into an existing document.
func (s *Postgres) Update(ctx context.Context, collection, id string, fields Fields) error {
	docID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode document fields: %w", err)
	}

	result, err := s.db.NewUpdate().
		Model((*document)(nil)).
		Set("data = data || ?::jsonb", string(patch)).
		Set("updated_at = NOW()").
		Where("id = ?", docID).
		Where("collection = ?", collection).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a document. Deleting a missing id is a no-op.
func (s *Postgres) Delete(ctx context.Context, collection, id string) error {
	docID, err := uuid.Parse(id)
	if err != nil {
		return nil
	}

	_, err = s.db.NewDelete().
		Model((*document)(nil)).
		Where("id = ?", docID).
		Where("collection = ?", collection).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	return nil
}

func mapDocuments(docs []document) ([]Document, error) {
	result := make([]Document, 0, len(docs))
	for _, doc := range docs {
		fields, err := decodeFields(doc.Data)
		if err != nil {
			return nil, err
		}
		result = append(result, Document{ID: doc.ID.String(), Fields: fields})
	}
	return result, nil
}
