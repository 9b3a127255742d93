package batch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lepinkainen/webpconv/webp"
)

// Metrics collects per-run conversion metrics on a private registry so they
// can be written in the node_exporter textfile format after the batch ends
type Metrics struct {
	registry    *prometheus.Registry
	conversions *prometheus.CounterVec
	duration    prometheus.Histogram
	outputBytes prometheus.Counter
	lastRun     prometheus.Gauge
}

// NewMetrics registers the webpconv metric set
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webpconv_conversions_total",
			Help: "Images processed, by outcome and mode.",
		}, []string{"outcome", "mode"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "webpconv_conversion_duration_seconds",
			Help:    "Time spent converting a single image.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		outputBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webpconv_output_bytes_total",
			Help: "Bytes written to converted files.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "webpconv_last_run_timestamp_seconds",
			Help: "Unix time the last batch finished.",
		}),
	}
	m.registry.MustRegister(m.conversions, m.duration, m.outputBytes, m.lastRun)
	return m
}

// TaskStarted implements Observer
func (m *Metrics) TaskStarted(int, webp.Task) {}

// TaskFinished implements Observer
func (m *Metrics) TaskFinished(_ int, r webp.Result) {
	m.Observe(r)
}

// Observe records one result
func (m *Metrics) Observe(r webp.Result) {
	mode := "encode"
	if r.Copied {
		mode = "copy"
	}
	m.conversions.WithLabelValues(r.Outcome.String(), mode).Inc()
	m.duration.Observe(r.Duration.Seconds())
	if r.Succeeded() {
		m.outputBytes.Add(float64(r.OutputSize))
	}
}

// Finish stamps the completion time
func (m *Metrics) Finish(at time.Time) {
	m.lastRun.Set(float64(at.Unix()))
}

// Registry exposes the underlying gatherer
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics to path atomically
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
