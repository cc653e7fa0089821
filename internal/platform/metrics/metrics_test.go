package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLatencyMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.LatencyMiddleware)
	r.Get("/v1/admin/users/{uid}/compliance", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/admin/users/u1/compliance", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/admin/users/u2/compliance", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.RequestsTotal.WithLabelValues(http.MethodGet, "/v1/admin/users/{uid}/compliance", "418")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.RequestsTotal.WithLabelValues("GET", "/x", "200").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fooddrop_http_requests_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
