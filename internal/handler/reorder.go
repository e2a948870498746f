package handler

import (
	"net/http"

	"CatalogAPI/internal/resolver"
)

type reorderRequest struct {
	Catalog string `json:"catalog"`
	StoreID string `json:"store_id"`
	IDs     []any  `json:"ids"`
}

// Reorder stores a drag-and-drop order for an orderable catalog.
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/catalog/reorder"

	var req reorderRequest
	if !decodeBody(w, r, endpoint, &req) {
		return
	}
	c, err := h.Catalogs.Get(req.Catalog)
	if err != nil {
		writeError(w, endpoint, err)
		return
	}
	st, err := h.loadStore(r.Context(), req.StoreID)
	if err != nil {
		writeError(w, endpoint, err)
		return
	}

	n, err := resolver.Reorder(r.Context(), h.DB, c, st, req.IDs)
	if err != nil {
		writeError(w, endpoint, err)
		return
	}
	writeJSON(w, endpoint, http.StatusOK, map[string]int{"updated": n})
}
