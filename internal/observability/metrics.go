package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RidesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ridemate_rides_created_total",
		Help: "Rides posted, by ride type.",
	}, []string{"type"})

	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ridemate_bookings_created_total",
		Help: "Seat bookings created.",
	})

	NoShowsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ridemate_no_shows_total",
		Help: "Bookings marked as no-show.",
	})

	FakeRideReports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ridemate_fake_ride_reports_total",
		Help: "Fake-ride reports filed.",
	})

	CleanupSweeps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ridemate_cleanup_sweeps_total",
		Help: "Cleanup sweep runs.",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ridemate_http_requests_total",
		Help: "HTTP requests, by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ridemate_http_request_duration_seconds",
		Help:    "HTTP request latency, by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// HTTPMetrics records per-request counters and latency. Route templates
// (":id" style) keep the label cardinality bounded.
func HTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// MetricsHandler exposes the Prometheus scrape endpoint.
func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
