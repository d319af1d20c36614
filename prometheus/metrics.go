package prometheus

import (
	"time"

	"pos-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Authentication metrics
	LoginAttemptsCounter prometheus.Counter
	LoginErrorsCounter   *prometheus.CounterVec

	// Checkout metrics
	CheckoutCounter   *prometheus.CounterVec
	SaleAmountCounter prometheus.Counter

	// Stock metrics
	StockMovementsCounter *prometheus.CounterVec
	LowStockGauge         prometheus.Gauge

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(cfg *config.Config) {
	prefix := cfg.Metrics.Prefix

	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	LoginAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_login_attempts_total",
			Help: "Total number of login attempts",
		},
	)

	LoginErrorsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_login_errors_total",
			Help: "Total number of failed logins",
		},
		[]string{"reason"},
	)

	CheckoutCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_checkouts_total",
			Help: "Total number of checkout attempts by result",
		},
		[]string{"result"},
	)

	SaleAmountCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_sale_amount_total",
			Help: "Cumulative net total of committed sales",
		},
	)

	StockMovementsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_stock_movements_total",
			Help: "Total number of stock movements by type",
		},
		[]string{"type"},
	)

	LowStockGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_low_stock_products",
			Help: "Number of products currently below the low-stock threshold",
		},
	)

	DbOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)
}

// RecordHTTPRequest records the outcome and duration of an HTTP request
func RecordHTTPRequest(method, path, status string, duration float64) {
	if HttpRequestsTotal != nil {
		HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
	}
	if HttpRequestDuration != nil {
		HttpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
	}
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if DbOperationDuration == nil {
			return
		}
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordLoginAttempt increments the login attempt counter
func RecordLoginAttempt() {
	if LoginAttemptsCounter != nil {
		LoginAttemptsCounter.Inc()
	}
}

// RecordLoginError increments the failed-login counter for a reason
func RecordLoginError(reason string) {
	if LoginErrorsCounter != nil {
		LoginErrorsCounter.WithLabelValues(reason).Inc()
	}
}

// RecordCheckout increments the checkout counter for a result
func RecordCheckout(result string) {
	if CheckoutCounter != nil {
		CheckoutCounter.WithLabelValues(result).Inc()
	}
}

// RecordSaleAmount adds a committed sale's net total to the revenue counter
func RecordSaleAmount(amount float64) {
	if SaleAmountCounter != nil {
		SaleAmountCounter.Add(amount)
	}
}

// RecordStockMovement increments the stock movement counter for a type
func RecordStockMovement(movementType string) {
	if StockMovementsCounter != nil {
		StockMovementsCounter.WithLabelValues(movementType).Inc()
	}
}

// SetLowStockCount updates the low-stock product gauge
func SetLowStockCount(count int) {
	if LowStockGauge != nil {
		LowStockGauge.Set(float64(count))
	}
}
