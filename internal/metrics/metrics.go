package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the generation pipeline.
type Metrics struct {
	JobsSubmitted prometheus.Counter
	JobsCompleted prometheus.Counter
	JobsFailed    prometheus.Counter
	JobsInFlight  prometheus.Gauge

	ChannelsFailed       *prometheus.CounterVec
	StageDurationSeconds *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates a Metrics instance with all collectors registered on a private
// registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		JobsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentgen_jobs_submitted_total",
			Help: "Total number of accepted campaign jobs",
		}),
		JobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentgen_jobs_completed_total",
			Help: "Total number of jobs that reached completed status",
		}),
		JobsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentgen_jobs_failed_total",
			Help: "Total number of jobs that reached failed status",
		}),
		JobsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "contentgen_jobs_in_flight",
			Help: "Number of jobs currently queued or running",
		}),
		ChannelsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contentgen_channels_failed_total",
			Help: "Total number of channel pipelines that ended in a stage failure",
		}, []string{"channel", "stage"}),
		StageDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contentgen_stage_duration_seconds",
			Help:    "Duration of individual pipeline stages",
			Buckets: prometheus.DefBuckets,
		}, []string{"channel", "stage"}),
		registry: reg,
	}

	reg.MustRegister(
		m.JobsSubmitted,
		m.JobsCompleted,
		m.JobsFailed,
		m.JobsInFlight,
		m.ChannelsFailed,
		m.StageDurationSeconds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler returns the HTTP handler serving the exposition endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
