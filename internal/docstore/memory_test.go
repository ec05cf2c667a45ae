package docstore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAddAndGet(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	id, err := store.Add(ctx, "items", Fields{"name": "lamp", "price": 19.99})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := store.GetByID(ctx, "items", id)
	require.NoError(t, err)
	assert.Equal(t, "lamp", doc.Fields["name"])
	// Values are normalized the way the Postgres store returns them.
	assert.Equal(t, json.Number("19.99"), doc.Fields["price"])
}

func TestMemoryGetByID_NotFound(t *testing.T) {
	store := NewMemory()

	_, err := store.GetByID(context.Background(), "items", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryGetAll_IsolatedByCollection(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	_, err := store.Add(ctx, "items", Fields{"name": "lamp"})
	require.NoError(t, err)
	_, err = store.Add(ctx, "users", Fields{"username": "alice"})
	require.NoError(t, err)

	items, err := store.GetAll(ctx, "items")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestMemoryFindEqual(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	_, err := store.Add(ctx, "users", Fields{"username": "alice", "password": "secret"})
	require.NoError(t, err)
	_, err = store.Add(ctx, "users", Fields{"username": "bob", "password": "secret"})
	require.NoError(t, err)

	docs, err := store.FindEqual(ctx, "users", Fields{"username": "alice", "password": "secret"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "alice", docs[0].Fields["username"])

	docs, err = store.FindEqual(ctx, "users", Fields{"username": "alice", "password": "wrong"})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestMemoryUpdate_Merges(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	id, err := store.Add(ctx, "items", Fields{"name": "lamp", "price": 10})
	require.NoError(t, err)

	err = store.Update(ctx, "items", id, Fields{"price": 25})
	require.NoError(t, err)

	doc, err := store.GetByID(ctx, "items", id)
	require.NoError(t, err)
	assert.Equal(t, "lamp", doc.Fields["name"], "unmentioned fields survive a merge")
	assert.Equal(t, json.Number("25"), doc.Fields["price"])
}

func TestMemoryUpdate_NotFound(t *testing.T) {
	store := NewMemory()

	err := store.Update(context.Background(), "items", "missing", Fields{"price": 25})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDelete_Idempotent(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	id, err := store.Add(ctx, "items", Fields{"name": "lamp"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "items", id))
	require.NoError(t, store.Delete(ctx, "items", id), "double delete does not error")

	_, err = store.GetByID(ctx, "items", id)
	assert.ErrorIs(t, err, ErrNotFound)
}
