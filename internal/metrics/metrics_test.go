package metrics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"CatalogAPI/internal/catalog"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentCountsByRouteAndStatus(t *testing.T) {
	h := Instrument("test_route", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fail") != "" {
			http.Error(w, "nope", http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))

	before := testutil.ToFloat64(RequestTotal.WithLabelValues("test_route", "400"))
	for _, target := range []string{"/", "/?fail=1", "/?fail=1"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	assert.Equal(t, before+2, testutil.ToFloat64(RequestTotal.WithLabelValues("test_route", "400")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(RequestTotal.WithLabelValues("test_route", "200")), 1.0)
}

func TestCountResolutionError(t *testing.T) {
	c := ResolutionErrors.WithLabelValues("invalid_sort_direction")
	before := testutil.ToFloat64(c)

	CountResolutionError(&catalog.ResolveError{Kind: catalog.ErrInvalidDirection, Path: "title:UP"})
	CountResolutionError(fmt.Errorf("wrapped: %w", &catalog.ResolveError{Kind: catalog.ErrInvalidDirection}))
	CountResolutionError(fmt.Errorf("not a resolution error"))

	assert.Equal(t, before+2, testutil.ToFloat64(c))
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveQuery("PublishedPosts", "count", time.Now())

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "catalog_query_duration_seconds"))
}
