package prometheus

import (
	"time"

	"freshbulk-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   *prometheus.CounterVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Entity operation metrics
	ProductOperationsCounter prometheus.CounterVec
	OrderOperationsCounter   prometheus.CounterVec
	AddressOperationsCounter prometheus.CounterVec

	// Order status metrics
	OrderStatusCounter prometheus.CounterVec

	// Notification metrics
	EmailsSentCounter   prometheus.Counter
	EmailsFailedCounter prometheus.Counter
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(cfg *config.Config) {
	// Use metric prefix from configuration
	prefix := cfg.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Authentication metrics
	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthSuccessCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful authentications",
		},
	)

	AuthErrorsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"reason"},
	)

	// Database operation metrics
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Product metrics
	ProductOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_product_operations_total",
			Help: "Total number of product operations",
		},
		[]string{"operation"},
	)

	// Order metrics
	OrderOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_order_operations_total",
			Help: "Total number of order operations",
		},
		[]string{"operation"},
	)

	// Address metrics
	AddressOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_address_operations_total",
			Help: "Total number of address operations",
		},
		[]string{"operation"},
	)

	// Order status metrics
	OrderStatusCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_order_status_updates_total",
			Help: "Total number of order status updates",
		},
		[]string{"status"},
	)

	// Notification metrics
	EmailsSentCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_emails_sent_total",
			Help: "Total number of notification emails sent",
		},
	)

	EmailsFailedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_emails_failed_total",
			Help: "Total number of notification emails that failed to send",
		},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordAuthError increments the counter for a failed authentication
func RecordAuthError(reason string) {
	if AuthErrorsCounter != nil {
		AuthErrorsCounter.WithLabelValues(reason).Inc()
	}
}

// RecordProductOperation increments the counter for product operations
func RecordProductOperation(operation string) {
	ProductOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordOrderOperation increments the counter for order operations
func RecordOrderOperation(operation string) {
	OrderOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordAddressOperation increments the counter for address operations
func RecordAddressOperation(operation string) {
	AddressOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordOrderStatus increments the counter for a status update
func RecordOrderStatus(status string) {
	OrderStatusCounter.WithLabelValues(status).Inc()
}

// RecordEmailSent increments the counter for sent emails
func RecordEmailSent() {
	if EmailsSentCounter != nil {
		EmailsSentCounter.Inc()
	}
}

// RecordEmailFailure increments the counter for failed emails
func RecordEmailFailure() {
	if EmailsFailedCounter != nil {
		EmailsFailedCounter.Inc()
	}
}
