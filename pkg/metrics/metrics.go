package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all farm operations metrics
type Metrics struct {
	serviceName string
	registry    *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Kafka metrics
	KafkaEventsPublished *prometheus.CounterVec
	KafkaPublishDuration *prometheus.HistogramVec

	// MongoDB metrics
	MongoDBOperations        *prometheus.CounterVec
	MongoDBOperationDuration *prometheus.HistogramVec

	// Business metrics
	BlocksCreated       *prometheus.CounterVec
	BlockTransitions    *prometheus.CounterVec
	CapacityUtilization *prometheus.GaugeVec
	AlertsOpen          *prometheus.GaugeVec
	SchedulingRuns      *prometheus.CounterVec
	TasksScheduled      *prometheus.CounterVec
	TasksDropped        *prometheus.CounterVec
	FormulaFailures     *prometheus.CounterVec
	SchedulingDuration  *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// Config holds metrics configuration
type Config struct {
	ServiceName string
	Namespace   string
}

// DefaultConfig returns default metrics configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "farmops",
	}
}

// New creates a new Metrics instance
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()

	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		serviceName: config.ServiceName,
		registry:    registry,
	}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"service", "method", "path"},
	)

	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "http_requests_in_flight",
			Help:        "Number of HTTP requests currently being processed",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.KafkaEventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "kafka_events_published_total",
			Help:      "Total number of Kafka events published",
		},
		[]string{"service", "topic", "event_type", "status"},
	)

	m.KafkaPublishDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "kafka_publish_duration_seconds",
			Help:      "Kafka publish duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"service", "topic"},
	)

	m.MongoDBOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "mongodb_operations_total",
			Help:      "Total number of MongoDB operations",
		},
		[]string{"service", "collection", "operation", "status"},
	)

	m.MongoDBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "mongodb_operation_duration_seconds",
			Help:      "MongoDB operation duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"service", "collection", "operation"},
	)

	m.BlocksCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "blocks_created_total",
			Help:      "Total number of blocks created",
		},
		[]string{"service", "farm_id"},
	)

	m.BlockTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "block_transitions_total",
			Help:      "Total number of block lifecycle transitions",
		},
		[]string{"service", "from_status", "to_status"},
	)

	m.CapacityUtilization = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "block_capacity_utilization_ratio",
			Help:      "Assigned plants as a fraction of block capacity",
		},
		[]string{"service", "block_id"},
	)

	m.AlertsOpen = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "alerts_open",
			Help:      "Number of blocks with an unresolved alert",
		},
		[]string{"service", "severity"},
	)

	m.SchedulingRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "scheduling_runs_total",
			Help:      "Total number of scheduling evaluations",
		},
		[]string{"service", "status"},
	)

	m.TasksScheduled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "tasks_scheduled_total",
			Help:      "Total number of tasks emitted by the scheduler",
		},
		[]string{"service", "category", "priority"},
	)

	m.TasksDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "tasks_dropped_total",
			Help:      "Total number of eligible tasks dropped by dependency checks",
		},
		[]string{"service"},
	)

	m.FormulaFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "formula_failures_total",
			Help:      "Total number of cost formula evaluation failures",
		},
		[]string{"service"},
	)

	m.SchedulingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "scheduling_duration_seconds",
			Help:      "Scheduling evaluation duration in seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"service"},
	)

	m.CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"service", "name"},
	)

	m.CircuitBreakerTrips = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "circuit_breaker_trips_total",
			Help:      "Total number of circuit breaker trips",
		},
		[]string{"service", "name"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.KafkaEventsPublished,
		m.KafkaPublishDuration,
		m.MongoDBOperations,
		m.MongoDBOperationDuration,
		m.BlocksCreated,
		m.BlockTransitions,
		m.CapacityUtilization,
		m.AlertsOpen,
		m.SchedulingRuns,
		m.TasksScheduled,
		m.TasksDropped,
		m.FormulaFailures,
		m.SchedulingDuration,
		m.CircuitBreakerState,
		m.CircuitBreakerTrips,
	)

	return m
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// RecordKafkaPublish records a Kafka publish attempt
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.KafkaEventsPublished.WithLabelValues(m.serviceName, topic, eventType, status).Inc()
	m.KafkaPublishDuration.WithLabelValues(m.serviceName, topic).Observe(duration.Seconds())
}

// RecordMongoOperation records a MongoDB operation
func (m *Metrics) RecordMongoOperation(collection, operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.MongoDBOperations.WithLabelValues(m.serviceName, collection, operation, status).Inc()
	m.MongoDBOperationDuration.WithLabelValues(m.serviceName, collection, operation).Observe(duration.Seconds())
}

// RecordBlockCreated records a block creation
func (m *Metrics) RecordBlockCreated(farmID string) {
	m.BlocksCreated.WithLabelValues(m.serviceName, farmID).Inc()
}

// RecordBlockTransition records a lifecycle transition
func (m *Metrics) RecordBlockTransition(from, to string) {
	m.BlockTransitions.WithLabelValues(m.serviceName, from, to).Inc()
}

// RecordCapacityUtilization records the fill ratio of a block
func (m *Metrics) RecordCapacityUtilization(blockID string, ratio float64) {
	m.CapacityUtilization.WithLabelValues(m.serviceName, blockID).Set(ratio)
}

// RecordSchedulingRun records a scheduling evaluation outcome
func (m *Metrics) RecordSchedulingRun(err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.SchedulingRuns.WithLabelValues(m.serviceName, status).Inc()
	m.SchedulingDuration.WithLabelValues(m.serviceName).Observe(duration.Seconds())
}

// RecordTaskScheduled records a scheduled task
func (m *Metrics) RecordTaskScheduled(category, priority string) {
	m.TasksScheduled.WithLabelValues(m.serviceName, category, priority).Inc()
}

// RecordTasksDropped records tasks dropped by dependency checks
func (m *Metrics) RecordTasksDropped(count int) {
	m.TasksDropped.WithLabelValues(m.serviceName).Add(float64(count))
}

// RecordFormulaFailure records a cost formula evaluation failure
func (m *Metrics) RecordFormulaFailure() {
	m.FormulaFailures.WithLabelValues(m.serviceName).Inc()
}

// RecordCircuitBreakerState records a circuit breaker state change
func (m *Metrics) RecordCircuitBreakerState(name string, state int) {
	m.CircuitBreakerState.WithLabelValues(m.serviceName, name).Set(float64(state))
}
