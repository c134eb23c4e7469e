package functionRuntimeInterface

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc/codes"
)

// Metrics counts invocations of one handler on a private registry.
type Metrics struct {
	handler     string
	registry    *prometheus.Registry
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

func NewMetrics(handlerName string) *Metrics {
	m := &Metrics{
		handler:  handlerName,
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hyperfaas",
			Subsystem: "function",
			Name:      "invocations_total",
			Help:      "Handler invocations by gRPC status code.",
		}, []string{"handler", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hyperfaas",
			Subsystem: "function",
			Name:      "invocation_duration_seconds",
			Help:      "Time from request to resolved result.",
			Buckets:   []float64{.01, .05, .1, .15, .25, .5, 1, 2.5, 5},
		}, []string{"handler"}),
	}
	m.registry.MustRegister(m.invocations, m.duration)
	return m
}

func (m *Metrics) observe(code codes.Code, d time.Duration) {
	m.invocations.WithLabelValues(m.handler, code.String()).Inc()
	m.duration.WithLabelValues(m.handler).Observe(d.Seconds())
}

// Registry exposes the underlying prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Router serves /metrics and /healthz.
func (m *Metrics) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return r
}
