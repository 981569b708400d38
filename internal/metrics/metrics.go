package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	namespace = "collab_board"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBConnectionsOpen        prometheus.Gauge
	DBConnectionsInUse       prometheus.Gauge
	DBConnectionsIdle        prometheus.Gauge
	DBConnectionsMax         prometheus.Gauge
	DBConnectionWaitTotal    prometheus.Counter
	DBConnectionWaitDuration prometheus.Counter
	DBQueryDuration          *prometheus.HistogramVec
	DBQueryErrors            *prometheus.CounterVec

	// Board API client metrics
	ExternalAPIRequestDuration *prometheus.HistogramVec
	ExternalAPIRequestsTotal   *prometheus.CounterVec
	ExternalAPIErrors          *prometheus.CounterVec

	// Business metrics
	BoardsTotal            prometheus.Gauge
	LabelsTotal            prometheus.Gauge
	BoardCreatedTotal      prometheus.Counter
	StructuralUpdatesTotal *prometheus.CounterVec
	ShareChangesTotal      *prometheus.CounterVec
	LockContentionTotal    prometheus.Counter
	BoardsArchivedTotal    prometheus.Counter
	RealtimeConnections    prometheus.Gauge
	EventsPublishedTotal   *prometheus.CounterVec

	poolMu           sync.Mutex
	lastWaitCount    int64
	lastWaitDuration time.Duration

	logger *zap.Logger
}

// New creates and registers all metrics with the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, nil)
}

// NewWithLogger creates and registers all metrics with the default registry and a logger
func NewWithLogger(logger *zap.Logger) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, logger)
}

// NewWithRegistry creates and registers all metrics with a custom registry
func NewWithRegistry(registerer prometheus.Registerer, logger *zap.Logger) *Metrics {
	factory := promauto.With(registerer)

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "endpoint"},
		),

		DBConnectionsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections_open",
				Help:      "Current number of open database connections",
			},
		),
		DBConnectionsInUse: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections_in_use",
				Help:      "Current number of in-use database connections",
			},
		),
		DBConnectionsIdle: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections_idle",
				Help:      "Current number of idle database connections",
			},
		),
		DBConnectionsMax: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections_max",
				Help:      "Maximum number of open database connections configured",
			},
		),
		DBConnectionWaitTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_connection_wait_total",
				Help:      "Total number of times waited for a database connection",
			},
		),
		DBConnectionWaitDuration: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_connection_wait_duration_seconds_total",
				Help:      "Total duration waited for database connections in seconds",
			},
		),
		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "Database query duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"operation", "table"},
		),
		DBQueryErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_query_errors_total",
				Help:      "Total number of database query errors",
			},
			[]string{"operation", "table"},
		),

		ExternalAPIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "external_api_request_duration_seconds",
				Help:      "Board API request duration in seconds, as seen by the client",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "status"},
		),
		ExternalAPIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "external_api_requests_total",
				Help:      "Total number of board API requests issued by the client",
			},
			[]string{"endpoint", "method", "status"},
		),
		ExternalAPIErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "external_api_errors_total",
				Help:      "Total number of failed board API requests",
			},
			[]string{"endpoint", "error_type"},
		),

		BoardsTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "boards_total",
				Help:      "Total number of live boards",
			},
		),
		LabelsTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "labels_total",
				Help:      "Total number of live labels",
			},
		),
		BoardCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "board_created_total",
				Help:      "Total number of board creation events",
			},
		),
		StructuralUpdatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "structural_updates_total",
				Help:      "Total number of board columns replacements by result",
			},
			[]string{"result"},
		),
		ShareChangesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "share_changes_total",
				Help:      "Total number of share and unshare operations by entity level",
			},
			[]string{"level", "action"},
		),
		LockContentionTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lock_contention_total",
				Help:      "Total number of board lock acquisitions that had to wait",
			},
		),
		BoardsArchivedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "boards_archived_total",
				Help:      "Total number of deleted boards archived and purged",
			},
		),
		RealtimeConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "realtime_connections",
				Help:      "Current number of open change feed websockets",
			},
		),
		EventsPublishedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Total number of board change events published",
			},
			[]string{"type"},
		),

		logger: logger,
	}
}

// safeExecute wraps metric operations with panic recovery
func (m *Metrics) safeExecute(operation string, fn func()) {
	if m == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			if m.logger != nil {
				m.logger.Error("Panic in metrics operation",
					zap.String("operation", operation),
					zap.Any("panic", r),
				)
			}
		}
	}()
	fn()
}
