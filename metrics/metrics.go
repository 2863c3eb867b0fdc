package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the process-wide Prometheus instruments. Collectors must be
// registered exactly once, hence the singleton.
type Collector struct {
	GatewayCalls   *prometheus.CounterVec
	GatewayLatency *prometheus.HistogramVec
	ExportRenders  *prometheus.CounterVec
}

var (
	globalCollector *Collector
	collectorOnce   sync.Once
)

func getCollector() *Collector {
	collectorOnce.Do(func() {
		globalCollector = &Collector{
			GatewayCalls: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "weather_gateway_calls_total",
					Help: "The total number of weather gateway calls",
				},
				[]string{"operation", "status"},
			),
			GatewayLatency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "weather_gateway_duration_seconds",
					Help:    "Weather gateway call duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"operation"},
			),
			ExportRenders: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "weather_export_renders_total",
					Help: "The total number of export render operations",
				},
				[]string{"format", "status"},
			),
		}
	})
	return globalCollector
}

// GatewayMetrics records upstream gateway call outcomes
type GatewayMetrics struct {
	collector *Collector
}

func NewGatewayMetrics() *GatewayMetrics {
	return &GatewayMetrics{collector: getCollector()}
}

func (m *GatewayMetrics) RecordCall(operation, status string) {
	m.collector.GatewayCalls.WithLabelValues(operation, status).Inc()
}

func (m *GatewayMetrics) RecordLatency(operation string, seconds float64) {
	m.collector.GatewayLatency.WithLabelValues(operation).Observe(seconds)
}

// ExportMetrics records export render outcomes per format
type ExportMetrics struct {
	collector *Collector
}

func NewExportMetrics() *ExportMetrics {
	return &ExportMetrics{collector: getCollector()}
}

func (m *ExportMetrics) RecordRender(format, status string) {
	m.collector.ExportRenders.WithLabelValues(format, status).Inc()
}
