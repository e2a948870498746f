package handler

import (
	"net/http"
)

type storeRequest struct {
	Values map[string]any `json:"values"`
}

// SaveStore keeps values a catalog may read through "store:" prefilters and
// returns the id to send back with later requests.
func (h *Handler) SaveStore(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/store"

	var req storeRequest
	if !decodeBody(w, r, endpoint, &req) {
		return
	}
	if h.Store == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "store backend not configured")
		return
	}
	id, err := h.Store.Save(r.Context(), req.Values)
	if err != nil {
		writeError(w, endpoint, err)
		return
	}
	writeJSON(w, endpoint, http.StatusCreated, map[string]string{"store_id": id})
}
