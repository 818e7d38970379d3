package prometheus

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Auth metrics
	LoginCounter     prometheus.Counter
	SignupCounter    prometheus.Counter
	AuthErrorCounter *prometheus.CounterVec

	// Billing metrics
	BillsCreatedCounter     prometheus.Counter
	BillsUpdatedCounter     prometheus.Counter
	BillsDeletedCounter     prometheus.Counter
	PaymentsRecordedCounter prometheus.Counter

	// Reporting metrics
	ReportQueryCounter *prometheus.CounterVec

	// Database operation metrics
	DBOperationHistogram *prometheus.HistogramVec

	// Request metrics
	RequestDurationHistogram *prometheus.HistogramVec
	APIRequestCounter        *prometheus.CounterVec
	APIErrorCounter          *prometheus.CounterVec
)

const namespace = "shop"

// InitMetrics initializes all Prometheus metrics
func InitMetrics() {
	LoginCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of successful logins",
	})

	SignupCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of account signups",
	})

	AuthErrorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_errors_total",
			Help:      "Total number of authentication failures",
		},
		[]string{"reason"},
	)

	BillsCreatedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bills_created_total",
		Help:      "Total number of bills created",
	})

	BillsUpdatedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bills_updated_total",
		Help:      "Total number of bills updated",
	})

	BillsDeletedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bills_deleted_total",
		Help:      "Total number of bills deleted",
	})

	PaymentsRecordedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_recorded_total",
		Help:      "Total number of payment updates recorded",
	})

	ReportQueryCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_queries_total",
			Help:      "Total number of report queries",
		},
		[]string{"report"},
	)

	DBOperationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Duration of database operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	RequestDurationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	APIRequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "path"},
	)

	APIErrorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total number of API errors",
		},
		[]string{"method", "path", "status"},
	)
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			APIRequestCounter.With(prometheus.Labels{
				"method": c.Request().Method,
				"path":   c.Path(),
			}).Inc()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			RequestDurationHistogram.With(prometheus.Labels{
				"method": c.Request().Method,
				"path":   c.Path(),
				"status": status,
			}).Observe(duration)

			if c.Response().Status >= 400 {
				APIErrorCounter.With(prometheus.Labels{
					"method": c.Request().Method,
					"path":   c.Path(),
					"status": status,
				}).Inc()
			}

			return err
		}
	}
}

// HandlerFunc returns a HTTP handler for metrics endpoint
func HandlerFunc() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// TrackDBOperation returns a function that tracks database operation duration
func TrackDBOperation(operation string) func(time.Time) {
	return func(startTime time.Time) {
		if DBOperationHistogram == nil {
			return
		}
		duration := time.Since(startTime).Seconds()
		DBOperationHistogram.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// RecordLogin increments the login counter
func RecordLogin() {
	if LoginCounter != nil {
		LoginCounter.Inc()
	}
}

// RecordSignup increments the signup counter
func RecordSignup() {
	if SignupCounter != nil {
		SignupCounter.Inc()
	}
}

// RecordAuthError increments the auth error counter for a failure reason
func RecordAuthError(reason string) {
	if AuthErrorCounter != nil {
		AuthErrorCounter.WithLabelValues(reason).Inc()
	}
}

// RecordBillCreated increments the bills created counter
func RecordBillCreated() {
	if BillsCreatedCounter != nil {
		BillsCreatedCounter.Inc()
	}
}

// RecordBillUpdated increments the bills updated counter
func RecordBillUpdated() {
	if BillsUpdatedCounter != nil {
		BillsUpdatedCounter.Inc()
	}
}

// RecordBillDeleted increments the bills deleted counter
func RecordBillDeleted() {
	if BillsDeletedCounter != nil {
		BillsDeletedCounter.Inc()
	}
}

// RecordPayment increments the payments recorded counter
func RecordPayment() {
	if PaymentsRecordedCounter != nil {
		PaymentsRecordedCounter.Inc()
	}
}

// RecordReportQuery increments the report query counter for one report kind
func RecordReportQuery(report string) {
	if ReportQueryCounter != nil {
		ReportQueryCounter.WithLabelValues(report).Inc()
	}
}
