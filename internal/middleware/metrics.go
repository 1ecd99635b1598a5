package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks request latency by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "terminal_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "path", "status"},
	)

	// OrderbookRequestsTotal counts order book snapshot requests.
	OrderbookRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terminal_orderbook_requests_total",
			Help: "Total number of order book requests by asset",
		},
		[]string{"asset"},
	)

	// TradesTotal counts trade submissions by outcome.
	TradesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terminal_trades_total",
			Help: "Total number of trade submissions by asset, side and status",
		},
		[]string{"asset", "side", "status"},
	)

	// OrderBookDepth tracks current book depth per side.
	OrderBookDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "terminal_orderbook_depth",
			Help: "Current order book depth in asset units",
		},
		[]string{"asset", "side"},
	)
)

// PrometheusMiddleware records request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start).Seconds()

		HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(c.Writer.Status()),
		).Observe(duration)
	}
}
