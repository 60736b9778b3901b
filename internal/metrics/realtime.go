package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StreamConnections counts open notification WebSocket connections.
	StreamConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "stream_connections",
			Help:      "Open notification stream connections.",
		},
	)

	// StreamPushes counts changes pushed to stream clients by kind.
	StreamPushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "stream_pushes_total",
			Help:      "Notification changes pushed to stream clients.",
		},
		[]string{"kind"},
	)

	// ResumeUploads counts resume uploads by outcome (stored, rejected, failed).
	ResumeUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resume",
			Name:      "uploads_total",
			Help:      "Resume uploads by outcome.",
		},
		[]string{"outcome"},
	)
)
