package ui

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkerMetrics tracks download worker activity. A nil *WorkerMetrics
// records nothing.
type WorkerMetrics struct {
	Duration *prometheus.HistogramVec
	InFlight prometheus.Gauge
	Reloads  *prometheus.CounterVec
}

// NewWorkerMetrics creates the collectors and registers them with reg.
func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	m := &WorkerMetrics{
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sectionview",
			Subsystem: "download",
			Name:      "duration_seconds",
			Help:      "Time spent fetching a section's rows, by result.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"result"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sectionview",
			Subsystem: "download",
			Name:      "in_flight",
			Help:      "Section fetches currently running.",
		}),
		Reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sectionview",
			Subsystem: "catalog",
			Name:      "reloads_total",
			Help:      "Catalog reloads by trigger.",
		}, []string{"trigger"}),
	}
	if reg != nil {
		reg.MustRegister(m.Duration, m.InFlight, m.Reloads)
	}
	return m
}

func (m *WorkerMetrics) observe(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.Duration.WithLabelValues(result).Observe(d.Seconds())
}

func (m *WorkerMetrics) inFlight(delta float64) {
	if m == nil {
		return
	}
	m.InFlight.Add(delta)
}

func (m *WorkerMetrics) reload(trigger string) {
	if m == nil {
		return
	}
	m.Reloads.WithLabelValues(trigger).Inc()
}
