package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lens_build_info",
			Help: "Build information of the Lens analytics service",
		},
		[]string{"version", "commit", "date"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lens_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lens_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lens_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Dataset loading metrics
	DatasetLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lens_dataset_loads_total",
			Help: "Total number of dataset load attempts by outcome",
		},
		[]string{"dataset", "status"},
	)

	DatasetLoadCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lens_dataset_load_cache_hits_total",
			Help: "Loads served from the fingerprint memo without reparsing",
		},
	)

	DatasetsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lens_datasets_loaded",
			Help: "Number of datasets currently loaded successfully",
		},
	)

	// View rendering metrics
	ViewRendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lens_view_renders_total",
			Help: "Total number of view renders by outcome",
		},
		[]string{"view", "status"},
	)

	ViewRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lens_view_render_duration_seconds",
			Help:    "Duration of view renders in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to ~1.6s
		},
		[]string{"view"},
	)

	RenderCacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lens_render_cache_hits_total",
			Help: "View renders served from the fingerprint-keyed cache",
		},
		[]string{"view"},
	)
)

// Middleware instruments HTTP handlers with request count, duration,
// and in-flight gauges. Path labels use the chi route pattern to keep
// cardinality bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		HTTPRequestsInFlight.Inc()
		defer HTTPRequestsInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
