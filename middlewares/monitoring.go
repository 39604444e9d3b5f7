package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "canteen_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "canteen_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	operations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "canteen_operations_total",
			Help: "Total number of canteen operations by outcome",
		},
		[]string{"operation", "status"},
	)

	orderAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "canteen_order_amount",
			Help:    "Total price of placed orders",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	cartReservations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "canteen_cart_reserved_units_total",
			Help: "Menu units reserved by carts and released back to stock",
		},
		[]string{"action"},
	)
)

// PrometheusMiddleware records request count and latency per route.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			// unmatched routes share one label value
			path = "unmatched"
		}

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Inc()

		httpRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			status,
		).Observe(duration)
	}
}

func RecordOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	operations.WithLabelValues(operation, status).Inc()
}

func ObserveOrderAmount(total float64) {
	orderAmount.Observe(total)
}

func RecordReservation(units int) {
	cartReservations.WithLabelValues("reserved").Add(float64(units))
}

func RecordRelease(units int) {
	cartReservations.WithLabelValues("released").Add(float64(units))
}
