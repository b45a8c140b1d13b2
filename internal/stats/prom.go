package stats

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Prom exports request metrics through a Prometheus registry.
type Prom struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewProm builds a registry with process and Go runtime collectors
// plus the request metrics.
func NewProm() *Prom {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)
	return &Prom{
		registry: registry,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "staticd",
			Name:      "requests_total",
			Help:      "Requests handled, by method and status code.",
		}, []string{"method", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "staticd",
			Name:      "request_duration_seconds",
			Help:      "Request handling time in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Observe implements Recorder. The path is not used as a label to keep
// cardinality bounded.
func (p *Prom) Observe(method, _ string, status int, elapsed time.Duration) {
	code := statusClassLabel(status)
	p.requests.WithLabelValues(method, code).Inc()
	p.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry for tests.
func (p *Prom) Registry() *prometheus.Registry { return p.registry }

// Handler returns the /metrics HTTP handler for this registry.
func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func statusClassLabel(status int) string {
	switch status {
	case 200:
		return "200"
	case 400:
		return "400"
	case 403:
		return "403"
	case 404:
		return "404"
	case 405:
		return "405"
	default:
		return "500"
	}
}

// MetricsServer serves the Prometheus endpoint on its own listener.
type MetricsServer struct {
	srv *http.Server
	log zerolog.Logger
}

// NewMetricsServer wires p's handler at /metrics on addr.
func NewMetricsServer(addr string, p *Prom, log zerolog.Logger) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())
	return &MetricsServer{
		srv: &http.Server{Addr: addr, Handler: mux},
		log: log,
	}
}

// Start serves until the listener fails or Stop is called.
func (m *MetricsServer) Start() error {
	m.log.Info().Str("addr", m.srv.Addr).Msg("metrics server listening")
	if err := m.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the metrics server down gracefully.
func (m *MetricsServer) Stop(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
