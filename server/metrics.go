package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector 服务端指标
type Collector struct {
	// API
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec

	// 模拟
	SimulationsTotal   *prometheus.CounterVec
	SimulationDuration *prometheus.HistogramVec
	SimulationSteps    prometheus.Counter
	TruncatedTotal     prometheus.Counter
	RiskMean           *prometheus.GaugeVec

	// websocket
	ActiveConnections prometheus.Gauge
	MessagesTotal     *prometheus.CounterVec
}

func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by endpoint, method, and status",
			},
			[]string{"endpoint", "method", "status"},
		),
		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"endpoint"},
		),
		SimulationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "simulations_total",
				Help:      "Total number of simulations by crop and outcome",
			},
			[]string{"crop", "status"},
		),
		SimulationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "simulation_duration_seconds",
				Help:      "Simulation wall time in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"crop"},
		),
		SimulationSteps: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "simulation_steps_total",
				Help:      "Total number of solver steps taken",
			},
		),
		TruncatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "simulation_truncated_total",
				Help:      "Number of simulations capped by the step limit",
			},
		),
		RiskMean: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "risk_mean",
				Help:      "Mean spoilage risk of the latest simulation per crop",
			},
			[]string{"crop"},
		),
		ActiveConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_connections",
				Help:      "Number of active websocket connections",
			},
		),
		MessagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ws_messages_total",
				Help:      "Websocket messages by type",
			},
			[]string{"type"},
		),
	}
}

type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

func NewTimer(observer prometheus.Observer) *Timer {
	return &Timer{
		start:    time.Now(),
		observer: observer,
	}
}

func (t *Timer) ObserveDuration() time.Duration {
	d := time.Since(t.start)
	if t.observer != nil {
		t.observer.Observe(d.Seconds())
	}
	return d
}

func (c *Collector) RecordAPIRequest(endpoint, method, status string) {
	c.APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}
