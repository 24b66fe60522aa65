package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quiz_http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	Submissions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_submissions_total",
			Help: "Total number of recorded quiz attempts",
		},
	)

	Terminations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_terminations_total",
			Help: "Total number of termination events by initiator",
		},
		[]string{"initiator"},
	)

	LeaderboardCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_leaderboard_cache_total",
			Help: "Leaderboard cache lookups by outcome",
		},
		[]string{"result"},
	)
)

const (
	InitiatorSelf  = "self"
	InitiatorAdmin = "admin"

	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
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

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
