package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"CatalogAPI/internal/catalog"
	"CatalogAPI/internal/logger"
	"CatalogAPI/internal/metrics"
	"CatalogAPI/internal/resolver"
	"CatalogAPI/internal/store"
)

// DB is what the handlers need from the Postgres pool.
type DB interface {
	resolver.Querier
	resolver.Beginner
}

// StoreBackend persists catalog store values between requests.
type StoreBackend interface {
	Save(ctx context.Context, values map[string]any) (string, error)
	Load(ctx context.Context, id string) (catalog.MapStore, error)
}

type Handler struct {
	Catalogs *catalog.Registry
	DB       DB
	Store    StoreBackend
}

type browseRequest struct {
	Catalog string         `json:"catalog"`
	Filters map[string]any `json:"filters"`
	Sort    string         `json:"sort"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	StoreID string         `json:"store_id"`
}

func (b browseRequest) request() catalog.Request {
	return catalog.Request{Filters: b.Filters, Sort: b.Sort, Page: b.Page, PerPage: b.PerPage}
}

// decodeBody reads a POST JSON body into dst. It writes the error response
// itself and reports whether the handler may continue.
func decodeBody(w http.ResponseWriter, r *http.Request, endpoint string, dst any) bool {
	if r.Method != http.MethodPost {
		logger.Warn("method_not_allowed", map[string]any{
			"endpoint": endpoint,
			"method":   r.Method,
		})
		w.Header().Set("Allow", http.MethodPost)
		writeJSONError(w, http.StatusMethodNotAllowed, "only POST allowed")
		return false
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		logger.Warn("read_body_failed", map[string]any{
			"endpoint": endpoint,
			"error":    err.Error(),
		})
		writeJSONError(w, http.StatusBadRequest, "failed to read body: "+err.Error())
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		logger.Warn("invalid_json", map[string]any{
			"endpoint": endpoint,
			"error":    err.Error(),
		})
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}

	logger.Debug("request", map[string]any{
		"endpoint": endpoint,
		"payload":  json.RawMessage(body),
	})
	return true
}

// loadStore returns an empty store when no id was sent.
func (h *Handler) loadStore(ctx context.Context, id string) (catalog.MapStore, error) {
	if id == "" || h.Store == nil {
		return catalog.MapStore{}, nil
	}
	return h.Store.Load(ctx, id)
}

func writeJSON(w http.ResponseWriter, endpoint string, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("write_response_failed", map[string]any{
			"endpoint": endpoint,
			"error":    err.Error(),
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeError maps err to a status code, logs it and writes the response.
func writeError(w http.ResponseWriter, endpoint string, err error) {
	status := statusFor(err)
	fields := map[string]any{
		"endpoint": endpoint,
		"status":   status,
		"error":    err.Error(),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request_failed", fields)
	} else {
		logger.Warn("request_rejected", fields)
	}
	metrics.CountResolutionError(err)
	writeJSONError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case catalog.IsResolutionError(err),
		errors.Is(err, catalog.ErrInvalidCatalog),
		errors.Is(err, store.ErrInvalidID),
		errors.Is(err, resolver.ErrNotOrderable):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrCatalogNotFound):
		return http.StatusNotFound
	case errors.Is(err, resolver.ErrOutOfScope):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
