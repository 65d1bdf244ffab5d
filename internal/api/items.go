package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cbitosc/HTF25-Team-374/internal/auth"
	"github.com/cbitosc/HTF25-Team-374/internal/db"
	"github.com/cbitosc/HTF25-Team-374/internal/imaging"
	"github.com/cbitosc/HTF25-Team-374/internal/model"
	"github.com/cbitosc/HTF25-Team-374/internal/moderation"
	"github.com/cbitosc/HTF25-Team-374/internal/store"
)

// ItemsHandler handles the public board and item submissions.
type ItemsHandler struct {
	DB      *db.DB
	Service *moderation.Service
}

type createItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Datetime    string `json:"datetime"`
	Image       string `json:"image"`
}

// Home handles GET /api/home.
func (h *ItemsHandler) Home(w http.ResponseWriter, r *http.Request) {
	home, err := h.Service.Home(r.Context())
	if err != nil {
		slog.Error("failed to build home page", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	jsonResponse(w, http.StatusOK, home)
}

// List handles GET /api/items?status=lost|found&search=term.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := model.Status(r.URL.Query().Get("status"))
	if status != model.StatusLost && status != model.StatusFound {
		jsonError(w, http.StatusBadRequest, "status must be lost or found")
		return
	}

	items, err := h.Service.Browse(r.Context(), status, r.URL.Query().Get("search"))
	if err != nil {
		slog.Error("failed to list items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items. Submissions always start pending.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		jsonError(w, http.StatusBadRequest, "title required")
		return
	}
	occurred, err := time.Parse(time.RFC3339, req.Datetime)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "datetime must be RFC 3339")
		return
	}

	submitter := claims.UserID
	item, err := store.CreateItem(r.Context(), h.DB, store.NewItem{
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		OccurredAt:  occurred,
		Image:       strings.TrimSpace(req.Image),
		SubmittedBy: &submitter,
	})
	if err != nil {
		slog.Error("failed to create item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	slog.Info("item submitted", "item", item.ID, "user", claims.Email)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "item", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || !canView(GetClaims(r.Context()), item) {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// UploadImage handles PUT /api/items/{id}/image. Only the submitter or an
// admin may replace the photo.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	claims := GetClaims(r.Context())
	if item == nil || !canView(claims, item) {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if !canEdit(claims, item) {
		jsonError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	// Leave room for multipart framing around the photo itself.
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if errors.Is(err, imaging.ErrTooLarge) {
		jsonError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image must be JPEG, PNG, or WebP")
		return
	}

	url := fmt.Sprintf("/api/items/%d/image", id)
	if err := store.SetItemImage(r.Context(), h.DB, id, photo.Data, photo.MIME, url); err != nil {
		if errors.Is(err, model.ErrItemNotFound) {
			jsonError(w, http.StatusNotFound, "item not found")
			return
		}
		slog.Error("failed to save image", "item", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"image": url})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if item == nil || !canView(GetClaims(r.Context()), item) {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	if listed(item) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
	} else {
		w.Header().Set("Cache-Control", "private, max-age=3600")
	}
	w.Write(data)
}

// canView reports whether claims may see item. Listed items are public;
// pending and rejected ones are visible to admins and their submitter.
func canView(claims *auth.Claims, item *model.Item) bool {
	return listed(item) || canEdit(claims, item)
}

// listed reports whether item is on the public board.
func listed(item *model.Item) bool {
	return item.Status != model.StatusPending && item.Status != model.StatusRejected
}

func canEdit(claims *auth.Claims, item *model.Item) bool {
	if claims == nil {
		return false
	}
	if claims.Role == model.RoleAdmin {
		return true
	}
	return item.SubmittedBy != nil && *item.SubmittedBy == claims.UserID
}
