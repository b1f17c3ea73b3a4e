// internal/metrics/metrics.go

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code", "service"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "service"},
	)

	// Analysis metrics
	ItemsAnalyzed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "items_analyzed_total",
			Help: "Total number of feed items analyzed",
		},
		[]string{"mode"},
	)

	HighBotScores = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "high_bot_scores_total",
			Help: "Total number of analyses scoring at or above the bot threshold",
		},
	)

	// Progression metrics
	PointsAwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_awarded_total",
			Help: "Total points awarded by kind",
		},
		[]string{"kind"},
	)

	BadgesEarned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "badges_earned_total",
			Help: "Total number of badges earned",
		},
	)

	// WebSocket metrics
	WebsocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Number of active websocket connections",
		},
	)

	// NATS metrics
	NatsMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_published_total",
			Help: "Total number of NATS messages published",
		},
		[]string{"subject", "status"},
	)

	// Application health metrics
	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "application_info",
			Help: "Application information",
		},
		[]string{"service", "version", "environment"},
	)
)

// Init sets the static application info gauge.
func Init(serviceName, version, environment string) {
	ApplicationInfo.WithLabelValues(serviceName, version, environment).Set(1)
}
