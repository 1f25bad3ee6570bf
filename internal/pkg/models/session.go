package models

// Role identifies which side of a ride an actor plays
type Role string

const (
	RoleDriver    Role = "driver"
	RolePassenger Role = "passenger"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleDriver || r == RolePassenger
}

// ConnectionState represents the lifecycle of a logical connection
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateReconnecting ConnectionState = "reconnecting"
)

// ActorSession is the record of one logical connection, owned by the
// connection manager of its role
type ActorSession struct {
	ActorID   string          `json:"actorId"`
	Role      Role            `json:"role"`
	State     ConnectionState `json:"connectionState"`
	LastError string          `json:"lastError,omitempty"`
}

// ConnectionStatus is what UI consumers poll
type ConnectionStatus struct {
	IsConnected     bool   `json:"isConnected"`
	ConnectionError string `json:"connectionError,omitempty"`
}

// ConnectEvent is the kind of the identification frame, e.g. driver_connect
func (r Role) ConnectEvent() string { return string(r) + "_connect" }

// GPSEvent is the kind of position frames sent by r, e.g. driver_gps
func (r Role) GPSEvent() string { return string(r) + "_gps" }

// ChatEvent is the kind of chat frames sent by r
func (r Role) ChatEvent() string { return string(r) + "_chat_message" }
