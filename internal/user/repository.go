package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"docstore-api/internal/docstore"
)

// Collection is the document-store collection holding accounts.
const Collection = "users"

var ErrNotFound = errors.New("user not found")

// Repository handles account persistence in the document store.
// Username and email uniqueness are enforced by the service's lookups, not
// by the store: concurrent registrations can still race (documented
// contract, see DESIGN.md).
type Repository struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// Create stores a new account document and returns its generated id.
func (r *Repository) Create(ctx context.Context, a *Account) (string, error) {
	fields := docstore.Fields{
		"name":     a.Name,
		"phone":    a.Phone,
		"age":      a.Age,
		"gender":   a.Gender,
		"email":    a.Email,
		"username": a.Username,
		"password": a.Password,
	}

	id, err := r.store.Add(ctx, Collection, fields)
	if err != nil {
		return "", fmt.Errorf("failed to create account: %w", err)
	}
	return id, nil
}

// UsernameExists reports whether any account holds the given username.
func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	docs, err := r.store.FindEqual(ctx, Collection, docstore.Fields{"username": username})
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return len(docs) > 0, nil
}

// EmailExists reports whether any account holds the given email.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	docs, err := r.store.FindEqual(ctx, Collection, docstore.Fields{"email": email})
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return len(docs) > 0, nil
}

// FindByCredentials returns the account matching username and password
// exactly. The first match is used if duplicates exist from a past
// registration race.
func (r *Repository) FindByCredentials(ctx context.Context, username, password string) (*Account, error) {
	return r.findOne(ctx, docstore.Fields{"username": username, "password": password})
}

// FindByUsernameAndEmail returns the account matching both fields.
func (r *Repository) FindByUsernameAndEmail(ctx context.Context, username, email string) (*Account, error) {
	return r.findOne(ctx, docstore.Fields{"username": username, "email": email})
}

// UpdatePassword overwrites the password field of an account document.
func (r *Repository) UpdatePassword(ctx context.Context, id, password string) error {
	err := r.store.Update(ctx, Collection, id, docstore.Fields{"password": password})
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (r *Repository) findOne(ctx context.Context, filter docstore.Fields) (*Account, error) {
	docs, err := r.store.FindEqual(ctx, Collection, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return accountFromDocument(docs[0]), nil
}

// accountFromDocument converts a stored document into the domain model.
func accountFromDocument(doc docstore.Document) *Account {
	a := &Account{ID: doc.ID}
	a.Name, _ = doc.Fields["name"].(string)
	a.Phone, _ = doc.Fields["phone"].(string)
	a.Gender, _ = doc.Fields["gender"].(string)
	a.Email, _ = doc.Fields["email"].(string)
	a.Username, _ = doc.Fields["username"].(string)
	a.Password, _ = doc.Fields["password"].(string)
	if age, ok := doc.Fields["age"].(json.Number); ok {
		a.Age = age
	}
	return a
}
