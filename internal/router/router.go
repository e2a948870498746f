package router

import (
	"net/http"
	"time"

	"CatalogAPI/internal/config"
	"CatalogAPI/internal/handler"
	"CatalogAPI/internal/logger"
	"CatalogAPI/internal/metrics"

	"github.com/google/uuid"
)

// New builds the HTTP routes of the catalog API.
func New(h *handler.Handler, cors config.CORSConfig) *http.ServeMux {
	policy := newCORSPolicy(cors)
	mux := http.NewServeMux()

	routes := map[string]http.HandlerFunc{
		"/api/catalog/browse":  h.Browse,
		"/api/catalog/plan":    h.Plan,
		"/api/catalog/reorder": h.Reorder,
		"/api/store":           h.SaveStore,
	}
	for path, fn := range routes {
		mux.Handle(path, metrics.Instrument(path, policy.wrap(withLogging(fn))))
	}
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// withLogging logs one line per request, tagged with the caller's
// X-Request-ID or a fresh one.
func withLogging(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)

		fields := map[string]any{
			"request_id":  id,
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      sw.status,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		switch {
		case sw.status >= 500:
			logger.Error("response", fields)
		case sw.status >= 400:
			logger.Warn("response", fields)
		default:
			logger.Info("response", fields)
		}
	})
}
