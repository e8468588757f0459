package hostmon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter republishes the latest readings as Prometheus metrics
type Exporter struct {
	registry     *prometheus.Registry
	usage        *prometheus.GaugeVec
	alerts       *prometheus.CounterVec
	sampleErrors prometheus.Counter
	lastSample   prometheus.Gauge
}

func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		usage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "hostmon",
			Name:      "usage_percent",
			Help:      "Latest utilization reading in percent.",
		}, []string{"metric"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hostmon",
			Name:      "alerts_total",
			Help:      "Threshold alerts raised.",
		}, []string{"metric"}),
		sampleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hostmon",
			Name:      "sample_errors_total",
			Help:      "Samples that could not be read from the source.",
		}),
		lastSample: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hostmon",
			Name:      "last_sample_timestamp_seconds",
			Help:      "Unix time of the latest successful sample.",
		}),
	}
	e.registry.MustRegister(e.usage, e.alerts, e.sampleErrors, e.lastSample)
	return e
}

// Observe records a successful reading and the alerts it raised
func (e *Exporter) Observe(r Reading, alerts []Alert) {
	for _, m := range Metrics {
		e.usage.WithLabelValues(string(m)).Set(r.Value(m))
	}
	for _, a := range alerts {
		e.alerts.WithLabelValues(string(a.Metric)).Inc()
	}
	e.lastSample.Set(float64(r.Time.UnixNano()) / float64(time.Second))
}

// ObserveError counts a failed sample
func (e *Exporter) ObserveError() {
	e.sampleErrors.Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled
func (e *Exporter) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown failed", "error", err)
		}
	}()

	logger.Info("serving metrics", "addr", listener.Addr().String())
	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server failed: %w", err)
	}
	return nil
}
