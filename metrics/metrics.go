package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Statement kinds used as the "kind" label.
const (
	KindCount  = "count"
	KindPage   = "page"
	KindUpdate = "update"
)

var (
	StatementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrar_statements_total",
			Help: "Statements executed against the store",
		},
		[]string{"entity", "kind"},
	)

	StatementErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrar_statement_errors_total",
			Help: "Statements the store failed to execute",
		},
		[]string{"entity", "kind"},
	)

	StatementDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "registrar_statement_duration_seconds",
			Help:    "Duration of statement execution in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"entity", "kind"},
	)

	// ValidationRejections counts requests rejected before any SQL was sent.
	ValidationRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrar_validation_rejections_total",
			Help: "Requests rejected by validation before reaching the store",
		},
		[]string{"entity", "reason"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrar_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "registrar_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	PoolConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "registrar_db_pool_connections",
			Help: "Database pool connections by state",
		},
		[]string{"state"},
	)
)

// RecordStatement records one executed statement.
func RecordStatement(entity, kind string, duration time.Duration, err error) {
	StatementsTotal.WithLabelValues(entity, kind).Inc()
	StatementDuration.WithLabelValues(entity, kind).Observe(duration.Seconds())
	if err != nil {
		StatementErrors.WithLabelValues(entity, kind).Inc()
	}
}

// RecordRejection records a validation failure; reason is a short, bounded label.
func RecordRejection(entity, reason string) {
	ValidationRejections.WithLabelValues(entity, reason).Inc()
}

func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// UpdatePoolStats publishes the current pool occupancy.
func UpdatePoolStats(open, inUse, idle int) {
	PoolConnections.WithLabelValues("open").Set(float64(open))
	PoolConnections.WithLabelValues("in_use").Set(float64(inUse))
	PoolConnections.WithLabelValues("idle").Set(float64(idle))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
