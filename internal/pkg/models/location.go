package models

import (
	"math"
	"time"
)

// Position represents a single position fix, produced by a device sensor or
// received over the wire
type Position struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	CapturedAt     time.Time `json:"capturedAt"`
	AccuracyMeters *float64  `json:"accuracyMeters,omitempty"`
}

// GeoPoint represents a bare coordinate pair
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Point returns the coordinates of the position
func (p Position) Point() GeoPoint {
	return GeoPoint{Latitude: p.Latitude, Longitude: p.Longitude}
}

// Valid reports whether the coordinates are finite and inside WGS84 bounds
func (g GeoPoint) Valid() bool {
	if math.IsNaN(g.Latitude) || math.IsNaN(g.Longitude) {
		return false
	}
	return g.Latitude >= -90 && g.Latitude <= 90 && g.Longitude >= -180 && g.Longitude <= 180
}

// OutboundThrottleState is the admission bookkeeping of one local actor.
// LastAccepted only changes when the push admission policy accepts a sample.
type OutboundThrottleState struct {
	LastAccepted     *Position
	LastSentAt       time.Time
	LastServerSyncAt time.Time
}

// RemoteActorPosition is the last accepted position of a remote actor
type RemoteActorPosition struct {
	ActorID        string    `json:"actorId"`
	Position       Position  `json:"position"`
	LastAcceptedAt time.Time `json:"lastAcceptedAt"`
}

// PositionUpdate is an inbound driver_location_update event. Older clients
// only fill UserID, newer ones fill DriverID.
type PositionUpdate struct {
	Type      string  `json:"type,omitempty"`
	DriverID  string  `json:"driverId,omitempty"`
	UserID    string  `json:"userId,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

// Position converts the event into a Position
func (u PositionUpdate) Position() Position {
	return Position{
		Latitude:   u.Latitude,
		Longitude:  u.Longitude,
		CapturedAt: UnixMilli(u.Timestamp),
	}
}
