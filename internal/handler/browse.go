package handler

import (
	"net/http"

	"CatalogAPI/internal/catalog"
	"CatalogAPI/internal/resolver"
)

type browseResponse struct {
	*catalog.Paginator
	Catalog    string                  `json:"catalog"`
	Settings   catalog.Settings        `json:"settings"`
	FilterDefs []catalog.FilterBinding `json:"filters"`
}

// Browse serves one page of a catalog.
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/catalog/browse"

	var req browseRequest
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

	page, _, err := resolver.Browse(r.Context(), h.DB, c, req.request(), st)
	if err != nil {
		writeError(w, endpoint, err)
		return
	}

	writeJSON(w, endpoint, http.StatusOK, browseResponse{
		Paginator:  page,
		Catalog:    c.Name(),
		Settings:   c.Settings(),
		FilterDefs: c.Filters(),
	})
}
