// Package metrics exposes Prometheus metrics for the scoring engine and
// its HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sentinelauth/sentinel/internal/models"
)

var (
	// LoginAttemptsTotal counts scored login attempts by verdict
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "scoring",
			Name:      "login_attempts_total",
			Help:      "Total number of scored login attempts by verdict",
		},
		[]string{"verdict"},
	)

	// BotScore observes the distribution of composite bot scores
	BotScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sentinel",
			Subsystem: "scoring",
			Name:      "bot_score",
			Help:      "Distribution of composite bot scores",
			Buckets:   []float64{0, 10, 20, 40, 60, 80, 100, 150, 200, 300},
		},
	)

	// HTTPRequestsTotal counts HTTP requests by method, path and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sentinel",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "path"},
	)
)

// ObserveVerdict records one scoring outcome
func ObserveVerdict(result *models.AnalysisResult) {
	LoginAttemptsTotal.WithLabelValues(string(result.Verdict)).Inc()
	BotScore.Observe(float64(result.TotalScore))
}

// Handler returns the /metrics endpoint handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware instruments HTTP requests with count and duration metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(wrapped, r)

		path := routePattern(r)

		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// routePattern labels requests by chi route pattern rather than raw URL,
// keeping label cardinality bounded for parameterized routes
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return r.URL.Path
}
