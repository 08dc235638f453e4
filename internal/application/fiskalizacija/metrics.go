package fiskalizacija

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contadores Prometheus del intercambio con el CIS. Un *Metrics nil no registra nada.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registra los colectores en reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fisk",
			Name:      "requests_total",
			Help:      "Peticiones al CIS por tipo y resultado.",
		}, []string{"tip", "ishod"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fisk",
			Name:      "request_duration_seconds",
			Help:      "Duración del intercambio con el CIS.",
			Buckets:   []float64{.1, .25, .5, 1, 2, 5, 10, 30},
		}, []string{"tip"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *Metrics) observe(tip, ishod string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(tip, ishod).Inc()
	m.duration.WithLabelValues(tip).Observe(d.Seconds())
}
