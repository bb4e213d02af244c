package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LeaveTransitions counts committed workflow operations by action.
	LeaveTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamdesk_leave_transitions_total",
			Help: "Committed leave workflow operations",
		},
		[]string{"action"},
	)

	// LeaveRejections counts workflow operations refused by a business rule.
	LeaveRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamdesk_leave_rejections_total",
			Help: "Leave workflow operations refused by a business rule",
		},
		[]string{"action", "reason"},
	)

	// AttachmentBytes observes the size of accepted attachments.
	AttachmentBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "teamdesk_leave_attachment_bytes",
			Help:    "Size of uploaded leave attachments in bytes",
			Buckets: prometheus.ExponentialBuckets(16*1024, 4, 6),
		},
	)

	// NotificationsDispatched counts stored notifications by outcome.
	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamdesk_notifications_dispatched_total",
			Help: "Notifications handled by the dispatch workers",
		},
		[]string{"result"},
	)

	// NotificationQueueDepth reports pending jobs in the notification queue.
	NotificationQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "teamdesk_notification_queue_depth",
			Help: "Jobs waiting in the notification queue",
		},
	)

	// SSESubscribers reports open notification streams.
	SSESubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "teamdesk_sse_subscribers",
			Help: "Open server-sent event streams",
		},
	)

	// SSEDropped counts events skipped because a stream was full.
	SSEDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "teamdesk_sse_dropped_events_total",
			Help: "Events dropped for slow server-sent event streams",
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamdesk_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "teamdesk_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
