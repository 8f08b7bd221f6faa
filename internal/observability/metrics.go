package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_http_requests_total",
			Help: "Total number of HTTP requests processed by the service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travel_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "travel_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
		[]string{"kind"},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"kind", "event"},
	)
	notificationPushesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_notification_pushes_total",
			Help: "Realtime notification push attempts by outcome.",
		},
		[]string{"outcome"},
	)
	sagaFlushesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "travel_activity_saga_flushes_total",
			Help: "Total number of non-empty activity log batch flushes.",
		},
	)
	sagaBatchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "travel_activity_saga_batch_size",
			Help:    "Number of entries per flushed activity log batch.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "travel_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsEventsTotal,
		notificationPushesTotal,
		sagaFlushesTotal,
		sagaBatchSize,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Inc()
}

func DecWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Dec()
}

func IncWSEvent(kind, event string) {
	wsEventsTotal.WithLabelValues(kind, event).Inc()
}

func IncNotificationPush(outcome string) {
	notificationPushesTotal.WithLabelValues(outcome).Inc()
}

func ObserveSagaFlush(batchSize int) {
	sagaFlushesTotal.Inc()
	sagaBatchSize.Observe(float64(batchSize))
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
