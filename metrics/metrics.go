// Package metrics instruments the migration pipeline with Prometheus
// counters and histograms, generalized from the teacher's S3-operation
// metrics (cmd/s3_server/metrics.go) to pipeline-stage metrics.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/storacha/migrate-to-w3up/internal/logging"
)

// Metrics holds every Prometheus collector the pipeline updates.
type Metrics struct {
	partsInFlight     prometheus.Gauge
	partDuration      prometheus.Histogram
	partOutcomesTotal *prometheus.CounterVec
	uploadOutcomesTotal *prometheus.CounterVec
	bytesCopied       prometheus.Counter
}

// New creates and registers the pipeline's metrics against the default
// Prometheus registry, the way the teacher's NewMetrics does.
func New() *Metrics {
	return &Metrics{
		partsInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "migrate_parts_in_flight",
			Help: "Number of parts currently being migrated.",
		}),
		partDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "migrate_part_duration_seconds",
			Help:    "Time to migrate a single part (fetch + register + optional copy).",
			Buckets: prometheus.DefBuckets,
		}),
		partOutcomesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "migrate_part_outcomes_total",
			Help: "Total part migrations by result.",
		}, []string{"result", "cause"}),
		uploadOutcomesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "migrate_upload_outcomes_total",
			Help: "Total upload migrations by result.",
		}, []string{"result"}),
		bytesCopied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "migrate_bytes_copied_total",
			Help: "Total bytes streamed to destination-issued upload URLs.",
		}),
	}
}

// PartStarted should be called when a part begins migrating; the
// returned func must be called with the terminal cause ("" on success)
// when it finishes.
func (m *Metrics) PartStarted() (finish func(cause string)) {
	m.partsInFlight.Inc()
	start := time.Now()
	return func(cause string) {
		m.partsInFlight.Dec()
		m.partDuration.Observe(time.Since(start).Seconds())
		result := "success"
		if cause != "" {
			result = "failure"
		}
		m.partOutcomesTotal.WithLabelValues(result, cause).Inc()
	}
}

// RecordBytesCopied adds n to the running total of bytes streamed to
// destination upload URLs.
func (m *Metrics) RecordBytesCopied(n int64) {
	if n > 0 {
		m.bytesCopied.Add(float64(n))
	}
}

// RecordUploadOutcome tags one completed upload as "success" or
// "failure".
func (m *Metrics) RecordUploadOutcome(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	m.uploadOutcomesTotal.WithLabelValues(result).Inc()
}

// Serve starts the /metrics and /health HTTP server, blocking until ctx
// is cancelled or the server errors. Mirrors the teacher's
// StartMetricsServer (cmd/s3_server/metrics.go), generalized to honor a
// context for graceful shutdown.
func Serve(ctx context.Context, port int, log logging.Printer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	server := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting metrics server", "port", port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
