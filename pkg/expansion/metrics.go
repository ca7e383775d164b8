package expansion

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts controller activity. A nil *Metrics records nothing.
type Metrics struct {
	Operations *prometheus.CounterVec
	Downloads  *prometheus.CounterVec
	Mutations  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sectionview",
			Subsystem: "expansion",
			Name:      "operations_total",
			Help:      "Expand, collapse and cancel calls by outcome.",
		}, []string{"op", "outcome"}),
		Downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sectionview",
			Subsystem: "expansion",
			Name:      "downloads_total",
			Help:      "Section downloads by result.",
		}, []string{"result"}),
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sectionview",
			Subsystem: "expansion",
			Name:      "row_mutations_total",
			Help:      "Batched row mutations sent to the host surface.",
		}, []string{"kind", "animated"}),
	}
	if reg != nil {
		reg.MustRegister(m.Operations, m.Downloads, m.Mutations)
	}
	return m
}

func (m *Metrics) operation(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	m.Operations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) download(result string) {
	if m == nil {
		return
	}
	m.Downloads.WithLabelValues(result).Inc()
}

func (m *Metrics) mutation(b Batch) {
	if m == nil {
		return
	}
	animated := "false"
	if b.Animated() {
		animated = "true"
	}
	m.Mutations.WithLabelValues(b.Kind.String(), animated).Inc()
}
