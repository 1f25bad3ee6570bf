package models

// DriverStatusPatch is the body of PATCH /api/drivers/:id. Nil fields are
// left out of the request.
type DriverStatusPatch struct {
	IsGPSSharing *bool `json:"isGPSSharing,omitempty"`
	IsAvailable  *bool `json:"isAvailable,omitempty"`
}

// DriverLocationRequest is the body of PATCH /api/drivers/:id/location
type DriverLocationRequest struct {
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	IsLocationSharing bool    `json:"isLocationSharing"`
}

// HeartbeatRequest is the body of POST /api/drivers/:id/heartbeat
type HeartbeatRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// UserLocationRequest is the body of the passenger location endpoints.
// Nil coordinates are sent as JSON null to clear the stored location.
type UserLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// Float64Ptr returns a pointer to f
func Float64Ptr(f float64) *float64 {
	return &f
}
