package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	SlotConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "academia_slot_conflicts_total",
		Help: "Timetable entries rejected because the slot was occupied.",
	})

	AttendanceMarked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "academia_attendance_marked_total",
		Help: "Attendance submissions stored.",
	})

	ActivityDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "academia_activity_decisions_total",
		Help: "Activity records approved or rejected.",
	}, []string{"status"})

	RejectedSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "academia_rejected_swept_total",
		Help: "Expired rejected activity records physically deleted.",
	})

	QueueEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "academia_queue_events_total",
		Help: "Queue events by type and processing result.",
	}, []string{"type", "result"})
)

// GinMiddleware records request counts and latency per matched route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
