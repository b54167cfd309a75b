package group

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	hostPath  = "host"
	accelPath = "accelerated"
)

// Metrics counts lookup-table rebuilds. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Rebuilds *prometheus.CounterVec
	Retries  *prometheus.CounterVec
	Groups   *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg, if reg is
// non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Rebuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gomesh",
			Name:      "table_rebuilds_total",
			Help:      "Number of per-particle group table rebuilds.",
		}, []string{"container", "path"}),
		Retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gomesh",
			Name:      "table_overflow_retries_total",
			Help:      "Number of accelerated rebuilds repeated after a row overflow.",
		}, []string{"container"}),
		Groups: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gomesh",
			Name:      "groups",
			Help:      "Number of groups currently stored.",
		}, []string{"container"}),
	}
	if reg != nil { reg.MustRegister(m.Rebuilds, m.Retries, m.Groups) }
	return m
}

func (m *Metrics) rebuilt(container, path string) {
	if m == nil { return }
	m.Rebuilds.WithLabelValues(container, path).Inc()
}

func (m *Metrics) retried(container string) {
	if m == nil { return }
	m.Retries.WithLabelValues(container).Inc()
}

func (m *Metrics) setGroups(container string, n int) {
	if m == nil { return }
	m.Groups.WithLabelValues(container).Set(float64(n))
}

// SetMetrics attaches m to the container. Passing nil detaches metrics.
func (d *Data) SetMetrics(m *Metrics) {
	d.metrics = m
	m.setGroups(d.name, len(d.members))
}
