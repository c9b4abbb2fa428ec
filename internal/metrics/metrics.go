// Package metrics exposes the pipeline's operational counters via
// Prometheus, mirroring the produced/dropped bookkeeping the teacher
// keeps per reader (_examples/lkumar3-iitr-Sensor-Logger/controller/
// sensors_controller.go's LogStats), but backed by
// github.com/prometheus/client_golang instead of ad-hoc log lines, and
// optionally exported over HTTP (§ ambient stack: metrics is additive,
// never required for the pipeline to run).
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tinyskpub/internal/logging"
)

// Registry bundles the counters a sensor producer and the consumer
// touch, plus the prometheus.Registry they're registered against. Each
// counter is labeled by sensor name so /metrics carries a per-sensor
// breakdown without the collector cardinality exploding (sensor count
// is small and fixed by config). New uses its own prometheus.Registry
// rather than the global DefaultRegisterer so tests can build more than
// one Registry in the same process.
type Registry struct {
	reg *prometheus.Registry

	produced   *prometheus.CounterVec
	dropped    *prometheus.CounterVec
	enqueued   *prometheus.CounterVec
	totalBytes prometheus.Gauge
}

// New builds a Registry with a private prometheus.Registry.
func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Registry{
		reg: reg,
		produced: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tinyskpub_frames_produced_total",
			Help: "Frames successfully read from a sensor reader.",
		}, []string{"sensor"}),
		dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tinyskpub_frames_dropped_total",
			Help: "Frames a producer could not enqueue (closed queue peer).",
		}, []string{"sensor"}),
		enqueued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tinyskpub_frames_enqueued_total",
			Help: "Frames the consumer pulled off the in-process queue.",
		}, []string{"sensor"}),
		totalBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tinyskpub_total_read_bytes",
			Help: "Process-wide total_read_bytes counter (§5), as last updated by the consumer.",
		}),
	}
}

func (r *Registry) Produced(sensor string)  { r.produced.WithLabelValues(sensor).Inc() }
func (r *Registry) Dropped(sensor string)   { r.dropped.WithLabelValues(sensor).Inc() }
func (r *Registry) Enqueued(sensor string)  { r.enqueued.WithLabelValues(sensor).Inc() }
func (r *Registry) SetTotalBytes(n uint64)  { r.totalBytes.Set(float64(n)) }

// Serve starts an HTTP listener exposing /metrics, if addr is
// non-empty. It runs until ctx is canceled, then shuts down with a
// bounded grace period. A listen failure is logged critical but is not
// fatal to the pipeline — metrics are ambient, not load-bearing (§1:
// metrics is outside the spec's Non-goals scope but still an ambient
// concern the teacher would wire in).
func (r *Registry) Serve(ctx context.Context, addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logging.L().Info("metrics: listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.L().Critical("metrics: listener failed: %v", err)
	}
}
