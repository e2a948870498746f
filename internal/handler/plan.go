package handler

import (
	"net/http"

	"CatalogAPI/internal/catalog"
)

type planResponse struct {
	Plan      *catalog.QueryPlan `json:"plan"`
	SQL       string             `json:"sql"`
	Args      []any              `json:"args"`
	CountSQL  string             `json:"count_sql"`
	CountArgs []any              `json:"count_args"`
}

// Plan resolves a request and returns the compiled SQL without running it.
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/catalog/plan"

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

	plan, err := c.BuildPlan(req.request(), st)
	if err != nil {
		writeError(w, endpoint, err)
		return
	}
	resp, err := compilePlan(c, plan)
	if err != nil {
		writeError(w, endpoint, err)
		return
	}
	writeJSON(w, endpoint, http.StatusOK, resp)
}

func compilePlan(c *catalog.Catalog, plan *catalog.QueryPlan) (planResponse, error) {
	resp := planResponse{Plan: plan}
	index, err := catalog.BuildIndexQuery(c.Source(), plan)
	if err != nil {
		return resp, err
	}
	if resp.SQL, resp.Args, err = index.ToSql(); err != nil {
		return resp, err
	}
	count, err := catalog.BuildCountQuery(c.Source(), plan)
	if err != nil {
		return resp, err
	}
	resp.CountSQL, resp.CountArgs, err = count.ToSql()
	return resp, err
}
