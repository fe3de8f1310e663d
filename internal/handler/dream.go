package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/forgo/manifestor/api/internal/model"
)

// Dreams is the dream service as seen by the dream endpoints
type Dreams interface {
	Create(ctx context.Context, ownerID string, draft model.DreamDraft) (*model.Dream, error)
	Get(ctx context.Context, ownerID, id string) (*model.Dream, error)
	SetItemDone(ctx context.Context, ownerID, id string, index int, done bool) (*model.Dream, error)
	Query(ctx context.Context, ownerID, term string, selector model.TypeSelector) ([]*model.Dream, error)
	Categories(ctx context.Context, ownerID string) ([]model.CategoryCount, error)
}

// DreamHandler handles dream endpoints
type DreamHandler struct {
	dreams Dreams
}

// NewDreamHandler creates a new dream handler
func NewDreamHandler(dreams Dreams) *DreamHandler {
	return &DreamHandler{dreams: dreams}
}

// SetItemDoneRequest is the body of a checklist toggle
type SetItemDoneRequest struct {
	Done *bool `json:"done"`
}

// List handles GET /v1/dreams?q=&type=
func (h *DreamHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	selector, ok := typeSelector(w, r)
	if !ok {
		return
	}

	dreams, err := h.dreams.Query(r.Context(), principal.ID, r.URL.Query().Get("q"), selector)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if dreams == nil {
		dreams = []*model.Dream{}
	}

	WriteData(w, http.StatusOK, dreams, map[string]string{
		"self":       "/v1/dreams",
		"categories": "/v1/dreams/categories",
	})
}

// Create handles POST /v1/dreams
func (h *DreamHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var draft model.DreamDraft
	if err := DecodeJSON(r, &draft); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	dream, err := h.dreams.Create(r.Context(), principal.ID, draft)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteData(w, http.StatusCreated, dream, dreamLinks(dream.ID))
}

// Get handles GET /v1/dreams/{dreamId}
func (h *DreamHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	dream, err := h.dreams.Get(r.Context(), principal.ID, r.PathValue("dreamId"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteData(w, http.StatusOK, dream, dreamLinks(dream.ID))
}

// SetItemDone handles PATCH /v1/dreams/{dreamId}/checklist/{index}
func (h *DreamHandler) SetItemDone(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		WriteError(w, model.NewValidationError([]model.FieldError{{Field: "index", Message: "index must be an integer"}}))
		return
	}

	var req SetItemDoneRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if req.Done == nil {
		WriteError(w, model.NewValidationError([]model.FieldError{{Field: "done", Message: "done is required"}}))
		return
	}

	dream, err := h.dreams.SetItemDone(r.Context(), principal.ID, r.PathValue("dreamId"), index, *req.Done)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteData(w, http.StatusOK, dream, dreamLinks(dream.ID))
}

// Categories handles GET /v1/dreams/categories
func (h *DreamHandler) Categories(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	categories, err := h.dreams.Categories(r.Context(), principal.ID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if categories == nil {
		categories = []model.CategoryCount{}
	}

	WriteData(w, http.StatusOK, categories, nil)
}

func dreamLinks(id string) map[string]string {
	return map[string]string{
		"self":       "/v1/dreams/" + id,
		"collection": "/v1/dreams",
	}
}

// typeSelector reads ?type=. Unknown values are a 422 on the type field.
func typeSelector(w http.ResponseWriter, r *http.Request) (model.TypeSelector, bool) {
	selector, ok := model.ParseTypeSelector(r.URL.Query().Get("type"))
	if !ok {
		WriteError(w, model.NewValidationError([]model.FieldError{{Field: "type", Message: "type must be all, short-term or long-term"}}))
		return "", false
	}
	return selector, true
}
