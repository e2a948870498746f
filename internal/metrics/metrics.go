package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"CatalogAPI/internal/catalog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestTotal counts HTTP requests by route and status code.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	// QueryDuration is the latency of the SQL statements a catalog runs.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_query_duration_seconds",
			Help:    "Catalog SQL latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"catalog", "kind"},
	)
	// ResolutionErrors counts rejected filter and sort bindings by error kind.
	ResolutionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_resolution_errors_total",
			Help: "Total number of rejected filter or sort bindings",
		},
		[]string{"kind"},
	)
)

func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveQuery records the time since start for one statement.
func ObserveQuery(catalogName, kind string, start time.Time) {
	QueryDuration.WithLabelValues(catalogName, kind).Observe(time.Since(start).Seconds())
}

// CountResolutionError increments ResolutionErrors when err is a resolution error.
func CountResolutionError(err error) {
	var re *catalog.ResolveError
	if !errors.As(err, &re) {
		return
	}
	ResolutionErrors.WithLabelValues(strings.ReplaceAll(re.Kind.Error(), " ", "_")).Inc()
}

// Instrument records request count and duration under a fixed route label.
func Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		RequestTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
