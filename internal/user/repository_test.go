package user

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docstore-api/internal/docstore"
)

func testAccount() *Account {
	return &Account{
		Name:     "Alice",
		Phone:    "555-0100",
		Age:      json.Number("30"),
		Gender:   "female",
		Email:    "alice@example.com",
		Username: "alice",
		Password: "secret",
	}
}

func TestCreateAndFindByCredentials(t *testing.T) {
	repo := NewRepository(docstore.NewMemory())
	ctx := context.Background()

	id, err := repo.Create(ctx, testAccount())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	found, err := repo.FindByCredentials(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, id, found.ID)
	assert.Equal(t, "Alice", found.Name)
	assert.Equal(t, json.Number("30"), found.Age)
	assert.Equal(t, "alice@example.com", found.Email)
}

func TestFindByCredentials_WrongPassword(t *testing.T) {
	repo := NewRepository(docstore.NewMemory())
	ctx := context.Background()

	_, err := repo.Create(ctx, testAccount())
	require.NoError(t, err)

	_, err = repo.FindByCredentials(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsernameAndEmailExists(t *testing.T) {
	repo := NewRepository(docstore.NewMemory())
	ctx := context.Background()

	_, err := repo.Create(ctx, testAccount())
	require.NoError(t, err)

	taken, err := repo.UsernameExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.UsernameExists(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, taken)

	registered, err := repo.EmailExists(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, registered)

	registered, err = repo.EmailExists(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.False(t, registered)
}

func TestFindByUsernameAndEmail(t *testing.T) {
	repo := NewRepository(docstore.NewMemory())
	ctx := context.Background()

	_, err := repo.Create(ctx, testAccount())
	require.NoError(t, err)

	found, err := repo.FindByUsernameAndEmail(ctx, "alice", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)

	_, err = repo.FindByUsernameAndEmail(ctx, "alice", "other@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePassword(t *testing.T) {
	repo := NewRepository(docstore.NewMemory())
	ctx := context.Background()

	id, err := repo.Create(ctx, testAccount())
	require.NoError(t, err)

	require.NoError(t, repo.UpdatePassword(ctx, id, "newsecret"))

	_, err = repo.FindByCredentials(ctx, "alice", "secret")
	assert.ErrorIs(t, err, ErrNotFound, "old password no longer matches")

	found, err := repo.FindByCredentials(ctx, "alice", "newsecret")
	require.NoError(t, err)
	assert.Equal(t, id, found.ID)
}

func TestUpdatePassword_UnknownID(t *testing.T) {
	repo := NewRepository(docstore.NewMemory())

	err := repo.UpdatePassword(context.Background(), "missing", "newsecret")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAccountJSONNeverContainsPassword(t *testing.T) {
	repo := NewRepository(docstore.NewMemory())
	ctx := context.Background()

	_, err := repo.Create(ctx, testAccount())
	require.NoError(t, err)

	found, err := repo.FindByCredentials(ctx, "alice", "secret")
	require.NoError(t, err)
	require.Equal(t, "secret", found.Password, "password is available in-process")

	data, err := json.Marshal(found)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "password")
	assert.NotContains(t, string(data), "secret")
}
