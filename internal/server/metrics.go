package server

import (
	"github.com/lacquerai/rankview/internal/dataset"
	"github.com/prometheus/client_golang/prometheus"
)

// unknownMetric labels rankings of names outside the metric vocabulary.
const unknownMetric = "unknown"

// Metrics holds the dashboard's Prometheus collectors.
type Metrics struct {
	uploads        *prometheus.CounterVec
	rankings       *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	cachedRows     prometheus.Gauge
	streamClients  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with registerer when
// it is not nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rankview_uploads_total",
			Help: "Table uploads by outcome (loaded, cached, rejected)",
		}, []string{"status"}),
		rankings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rankview_rankings_total",
			Help: "Ranking requests by metric and outcome",
		}, []string{"metric", "status"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rankview_render_duration_seconds",
			Help:    "Time spent ranking and rendering a chart",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"format"}),
		cachedRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rankview_cached_rows",
			Help: "Number of data rows in the cached table",
		}),
		streamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rankview_stream_clients",
			Help: "Number of connected event stream clients",
		}),
	}

	if registerer != nil {
		registerer.MustRegister(m.uploads)
		registerer.MustRegister(m.rankings)
		registerer.MustRegister(m.renderDuration)
		registerer.MustRegister(m.cachedRows)
		registerer.MustRegister(m.streamClients)
	}

	return m
}

// countRanking records a ranking outcome. Names outside the vocabulary share
// one label so request paths cannot grow the series count.
func (m *Metrics) countRanking(metric, status string) {
	if !dataset.IsMetric(metric) {
		metric = unknownMetric
	}
	m.rankings.WithLabelValues(metric, status).Inc()
}
