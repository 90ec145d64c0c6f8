package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmehra2102/lesson-reservation/internal/catalog/application"
	"github.com/dmehra2102/lesson-reservation/internal/catalog/domain"
	"github.com/dmehra2102/lesson-reservation/pkg/httpx"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{log: log, service: service}
}

// Register adds the catalog routes at the router root, since /search sits
// outside the /lessons prefix.
func (h *Handler) Register(r chi.Router) {
	r.Get("/lessons", h.list)
	r.Get("/lessons/{id}", h.get)
	r.Put("/lessons/{id}", h.update)
	r.Get("/search", h.search)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.respondList(w, r, domain.NewQuery(q.Get("search"), q.Get("sort"), q.Get("dir")))
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.respondList(w, r, domain.NewQuery(q.Get("q"), q.Get("sort"), q.Get("dir")))
}

func (h *Handler) respondList(w http.ResponseWriter, r *http.Request, q domain.Query) {
	entries, err := h.service.List(r.Context(), q)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var patch domain.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	e, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "lesson": e})
}

func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		httpx.Error(w, http.StatusBadRequest, "Invalid id")
	case errors.Is(err, domain.ErrEmptyPatch), errors.Is(err, domain.ErrInvalidPatch):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "Lesson not found")
	default:
		h.log.Error("catalog request failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Internal error")
	}
}
