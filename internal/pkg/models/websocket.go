package models

import "encoding/json"

// Frame is the minimal view of every JSON text frame, used to dispatch on Type
type Frame struct {
	Type string `json:"type"`
}

// GPSMessage is the driver_gps / passenger_gps frame
type GPSMessage struct {
	Type      string  `json:"type"`
	UserID    string  `json:"userId"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

// ChatMessage is the payload of a role-specific chat send
type ChatMessage struct {
	Type      string `json:"type"`
	RideID    string `json:"rideId"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// WSErrorMessage represents an error frame sent by the relay
type WSErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Message is a decoded frame of any kind: Type plus every field of the frame
type Message struct {
	Type   string
	Fields map[string]json.RawMessage
	Raw    []byte
}

// String returns the string value of field key, or "" when absent or not a string
func (m Message) String(key string) string {
	raw, ok := m.Fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Decode unmarshals the whole frame into v
func (m Message) Decode(v interface{}) error {
	return json.Unmarshal(m.Raw, v)
}

// DriverLocationEvent is published on the broker for every accepted driver_gps frame
type DriverLocationEvent struct {
	DriverID  string  `json:"driverId"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

// NearbyActor is one entry of a nearby-drivers lookup
type NearbyActor struct {
	ActorID    string  `json:"actorId"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKm float64 `json:"distanceKm"`
}

// ChatRelay is a chat message published on the broker under ride.chat.<rideId>
type ChatRelay struct {
	RideID     string `json:"rideId"`
	SenderRole Role   `json:"senderRole"`
	SenderID   string `json:"senderId"`
	Message    string `json:"message"`
	Timestamp  int64  `json:"timestamp"`
}

// LifecycleEvent is a ride or wallet notification consumed from the broker.
// Fields holds the whole payload, which is forwarded to the recipients.
type LifecycleEvent struct {
	UserID      string `json:"userId"`
	DriverID    string `json:"driverId"`
	PassengerID string `json:"passengerId"`
}
