package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsTotal counts API requests.
	// Labels: route (gin route pattern), method, status
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stackforge",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests handled by the configurator API",
	}, []string{"route", "method", "status"})

	// requestDuration measures handler latency.
	// Labels: route
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "stackforge",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"route"})

	// adjustmentsTotal counts propagator rewrites made on behalf of API callers.
	// Labels: category
	adjustmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stackforge",
		Subsystem: "engine",
		Name:      "adjustments_total",
		Help:      "Total category rewrites applied by adjustment",
	}, []string{"category"})

	// violationsTotal counts violations reported by validate and export.
	// Labels: rule, severity
	violationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stackforge",
		Subsystem: "engine",
		Name:      "violations_total",
		Help:      "Total rule violations reported",
	}, []string{"rule", "severity"})

	// sessionsStored tracks the number of sessions in the store
	sessionsStored = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "stackforge",
		Subsystem: "sessions",
		Name:      "stored",
		Help:      "Number of configurator sessions in the session store",
	})
)

// metricsMiddleware records request count and latency per route pattern
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
