// Package item exposes CRUD over the schema-less "items" collection. Every
// handler is a single store call with no cross-field validation.
package item

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"docstore-api/internal/docstore"
	"docstore-api/internal/httputil"
	"docstore-api/internal/logging"
)

// Collection is the document-store collection holding items.
const Collection = "items"

type Handler struct {
	store docstore.Store
}

func NewHandler(store docstore.Store) *Handler {
	return &Handler{store: store}
}

// ItemResponse is a stored item with its id attached.
type ItemResponse map[string]any

// CreateResponse carries the generated id of a new item.
type CreateResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Create handles POST /items
// @Summary      Add an item
// @Description  Store a new document with exactly the given fields.
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        request body object true "Arbitrary item fields"
// @Success      201 {object} CreateResponse
// @Failure      400 {object} httputil.ErrorResponse "Malformed JSON"
// @Failure      500 {object} httputil.ErrorResponse "Store error"
// @Router       /items [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	fields, err := decodeFields(r)
	if err != nil {
		logger.Warn("invalid item request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	id, err := h.store.Add(r.Context(), Collection, fields)
	if err != nil {
		logger.Error("failed to add item", "error", err.Error())
		httputil.RespondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	logger.Info("item added", "id", id)

	httputil.RespondJSON(w, CreateResponse{ID: id, Message: "item added"}, http.StatusCreated)
}

// List handles GET /items
// @Summary      List all items
// @Description  Return every item with its id. No ordering, no pagination.
// @Tags         items
// @Produce      json
// @Success      200 {array} ItemResponse
// @Failure      500 {object} httputil.ErrorResponse "Store error"
// @Router       /items [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	docs, err := h.store.GetAll(r.Context(), Collection)
	if err != nil {
		logger.Error("failed to list items", "error", err.Error())
		httputil.RespondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	items := make([]ItemResponse, 0, len(docs))
	for _, doc := range docs {
		item := make(ItemResponse, len(doc.Fields)+1)
		for k, v := range doc.Fields {
			item[k] = v
		}
		item["id"] = doc.ID
		items = append(items, item)
	}

	httputil.RespondJSON(w, items, http.StatusOK)
}

// Update handles PUT /items/{id}
// @Summary      Update an item
// @Description  Merge the given fields into an existing item.
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id path string true "Item id"
// @Param        request body object true "Partial item fields"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Malformed JSON"
// @Failure      500 {object} httputil.ErrorResponse "Store error or unknown id"
// @Router       /items/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	fields, err := decodeFields(r)
	if err != nil {
		logger.Warn("invalid item request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if err := h.store.Update(r.Context(), Collection, id, fields); err != nil {
		logger.Error("failed to update item", "id", id, "error", err.Error())
		httputil.RespondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	logger.Info("item updated", "id", id)

	httputil.RespondJSON(w, MessageResponse{Message: "item updated"}, http.StatusOK)
}

// Delete handles DELETE /items/{id}
// @Summary      Delete an item
// @Description  Remove an item. Deleting a missing id succeeds.
// @Tags         items
// @Produce      json
// @Param        id path string true "Item id"
// @Success      200 {object} MessageResponse
// @Failure      500 {object} httputil.ErrorResponse "Store error"
// @Router       /items/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.store.Delete(r.Context(), Collection, id); err != nil {
		logger.Error("failed to delete item", "id", id, "error", err.Error())
		httputil.RespondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	logger.Info("item deleted", "id", id)

	httputil.RespondJSON(w, MessageResponse{Message: "item deleted"}, http.StatusOK)
}

// MessageResponse is a plain success message
type MessageResponse struct {
	Message string `json:"message"`
}

// decodeFields reads the request body as a schema-less field map, keeping
// numbers as json.Number so they round-trip through the store unchanged.
func decodeFields(r *http.Request) (docstore.Fields, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var fields docstore.Fields
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}
