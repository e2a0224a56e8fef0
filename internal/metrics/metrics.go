// Package metrics holds the Prometheus collectors of the relay.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reasons used with DroppedEvents.
const (
	ReasonRoomNotFound = "room_not_found"
	ReasonUnbound      = "unbound_connection"
	ReasonDetached     = "session_detached"
	ReasonRateLimited  = "rate_limited"
	ReasonBadPayload   = "bad_payload"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Room lifecycle
	LiveRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_live_rooms",
			Help: "Rooms currently present in the registry",
		},
	)

	RoomsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_rooms_created_total",
			Help: "Total rooms created",
		},
		[]string{"visibility"}, // "public" or "private"
	)

	RoomsDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_rooms_deleted_total",
			Help: "Total rooms removed from the registry",
		},
		[]string{"cause"}, // "empty" or "unclaimed"
	)

	CodeCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_code_collisions_total",
			Help: "Generated room codes that were already live and had to be regenerated",
		},
	)

	// Traffic
	Connections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_connections",
			Help: "Open websocket connections",
		},
	)

	MessagesRelayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_messages_relayed_total",
			Help: "Chat messages appended to a room history",
		},
	)

	FramesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_frames_dropped_total",
			Help: "Outbound frames not delivered to a member because of backpressure",
		},
		[]string{"action"},
	)

	DroppedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_dropped_events_total",
			Help: "Inbound connection events silently ignored",
		},
		[]string{"reason"},
	)
)
