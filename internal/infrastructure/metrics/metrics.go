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
)

// Metrics holds the gateway's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	ToolCalls      *prometheus.CounterVec
	UpstreamErrors prometheus.Counter
	WebhookEvents  *prometheus.CounterVec
	RequestSeconds *prometheus.HistogramVec
}

// New registers the gateway collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	return &Metrics{
		registry: reg,
		ToolCalls: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_tool_calls_total",
			Help: "Tool invocations by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		UpstreamErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "gateway_upstream_errors_total",
			Help: "Failures reported by the commerce platform.",
		}),
		WebhookEvents: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_webhook_events_total",
			Help: "Webhook deliveries by topic.",
		}, []string{"topic"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gateway_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"pattern", "status"}),
	}
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		pattern := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}
		m.RequestSeconds.
			WithLabelValues(pattern, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}
