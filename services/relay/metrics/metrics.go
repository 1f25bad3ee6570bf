// Package metrics holds the relay's Prometheus collectors
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConnectedPeers counts identified WebSocket connections per role
	ConnectedPeers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "relay_connected_peers",
		Help: "Identified WebSocket connections grouped by role.",
	}, []string{"role"})

	// FramesReceived counts inbound frames by kind and outcome
	FramesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_frames_received_total",
		Help: "Inbound WebSocket frames grouped by kind and result.",
	}, []string{"kind", "result"})

	// FanoutDeliveries counts driver_location_update frames sent to passengers
	FanoutDeliveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_fanout_deliveries_total",
		Help: "Driver location updates delivered to passengers.",
	})

	// NotificationsDelivered counts lifecycle events delivered to connected users
	NotificationsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_notifications_total",
		Help: "Lifecycle notifications grouped by subject and result.",
	}, []string{"subject", "result"})
)

// Frame results
const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

// Notification results
const (
	ResultDelivered = "delivered"
	ResultOffline   = "offline"
)
