// Package observability provides Prometheus metrics and OpenTelemetry tracing helpers.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// MessagesCreatedTotal counts conversation messages accepted by the pipeline.
	MessagesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_conversation_messages_created_total",
		Help: "Total number of conversation messages accepted",
	})

	// ModerationRejectionsTotal counts pipeline rejections by stage.
	ModerationRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_moderation_rejections_total",
		Help: "Total number of moderation pipeline rejections by stage",
	}, []string{"stage"})

	// FlagsCreatedTotal counts flags filed against posts.
	FlagsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_flagged_posts_created_total",
		Help: "Total number of post flags created",
	})

	// FlagReviewsTotal counts admin review decisions by outcome.
	FlagReviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_flagged_posts_reviews_total",
		Help: "Total number of flag review decisions by outcome",
	}, []string{"decision"})

	// WebSocketConnectionsTotal is the gauge of active WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agora_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped because a client's
	// send buffer was full or closed.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_websocket_backpressure_drops_total",
		Help: "Total number of websocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// Moderation rejection stage labels.
const (
	StageBan      = "ban"
	StageContent  = "content"
	StageThrottle = "throttle"
	StageInput    = "input"
)
