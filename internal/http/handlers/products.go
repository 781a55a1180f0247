package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/superpool/superpool/internal/core"
)

type ProductHandler struct {
	catalog core.CatalogRepo
	log     *slog.Logger
}

func NewProductHandler(catalog core.CatalogRepo, log *slog.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, log: log}
}

func (h *ProductHandler) Mount(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{product_id}", h.Get)
		r.Post("/{product_id}/trash", h.Trash)
		r.Post("/{product_id}/restore", h.Restore)
	})
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		writeError(r, h.log, w, err, "Could not list products.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetByID(r.Context(), chi.URLParam(r, "product_id"))
	if err != nil {
		writeError(r, h.log, w, err, "Product not found.")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Trash soft-deletes a product; trashed products stop rating but stay
// queryable for audit.
func (h *ProductHandler) Trash(w http.ResponseWriter, r *http.Request) {
	h.setTrashed(w, r, true)
}

func (h *ProductHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.setTrashed(w, r, false)
}

func (h *ProductHandler) setTrashed(w http.ResponseWriter, r *http.Request, trashed bool) {
	id := chi.URLParam(r, "product_id")
	if err := h.catalog.SetTrashed(r.Context(), id, trashed); err != nil {
		writeError(r, h.log, w, err, "Product not found.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
