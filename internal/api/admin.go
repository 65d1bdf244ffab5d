package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cbitosc/HTF25-Team-374/internal/db"
	"github.com/cbitosc/HTF25-Team-374/internal/lifecycle"
	"github.com/cbitosc/HTF25-Team-374/internal/listing"
	"github.com/cbitosc/HTF25-Team-374/internal/model"
	"github.com/cbitosc/HTF25-Team-374/internal/moderation"
	"github.com/cbitosc/HTF25-Team-374/internal/store"
)

// AdminHandler handles the moderation endpoints.
type AdminHandler struct {
	DB      *db.DB
	Service *moderation.Service
}

type transitionRequest struct {
	Status model.Status `json:"status"`
}

// Queue handles GET /api/admin/queue?status=.
func (h *AdminHandler) Queue(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		raw = string(model.StatusPending)
	}
	f, err := listing.ParseFilter(raw)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	q, err := h.Service.Queue(r.Context(), f)
	if err != nil {
		slog.Error("failed to build queue", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	jsonResponse(w, http.StatusOK, q)
}

// Transition handles POST /api/admin/items/{id}/status.
func (h *AdminHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Status.Valid() {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	var actor *int64
	if claims := GetClaims(r.Context()); claims != nil {
		actor = &claims.UserID
	}

	item, err := h.Service.Transition(r.Context(), id, req.Status, actor)
	if err != nil {
		writeTransitionError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

func writeTransitionError(w http.ResponseWriter, err error) {
	var perr *moderation.PersistenceError
	switch {
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrStatusChanged):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, moderation.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &perr):
		jsonError(w, http.StatusBadGateway, perr.Error())
	default:
		slog.Error("transition failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

// Duplicates handles GET /api/admin/items/{id}/duplicates.
func (h *AdminHandler) Duplicates(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	items, err := h.Service.Duplicates(r.Context(), id)
	if errors.Is(err, moderation.ErrNotFound) {
		jsonError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to find duplicates", "item", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to find duplicates")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// History handles GET /api/admin/items/{id}/history.
func (h *AdminHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	history, err := store.GetItemHistory(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item history", "item", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item history")
		return
	}
	if history == nil {
		history = []model.StatusChange{}
	}
	jsonResponse(w, http.StatusOK, history)
}
