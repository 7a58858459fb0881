package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/masquevpn/panel/internal/backend"
)

// Metrics counts admin API calls on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the panel's collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "masque_panel_requests_total",
			Help: "Admin API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "masque_panel_request_duration_seconds",
			Help:    "Admin API request latency.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint"}),
	}
	m.registry.MustRegister(m.requests, m.duration)
	return m
}

// Middleware records every request that passes through the client.
func (m *Metrics) Middleware() backend.Middleware {
	return func(next backend.Doer) backend.Doer {
		return backend.DoerFunc(func(ctx context.Context, req *backend.Request) (*backend.Response, error) {
			start := time.Now()
			resp, err := next.Do(ctx, req)
			outcome := "ok"
			if err != nil {
				outcome = backend.KindOf(err).String()
			}
			m.requests.WithLabelValues(req.Endpoint, outcome).Inc()
			m.duration.WithLabelValues(req.Endpoint).Observe(time.Since(start).Seconds())
			return resp, err
		})
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
