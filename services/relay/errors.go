package relay

import "errors"

var (
	// ErrInvalidLocation is returned for coordinates outside WGS84 bounds
	ErrInvalidLocation = errors.New("invalid location")
	// ErrLocationNotFound is returned when no position is stored for an actor
	ErrLocationNotFound = errors.New("location not found")
	// ErrMissingRideID is returned for chat messages without a ride
	ErrMissingRideID = errors.New("ride id is required")
	// ErrEmptyMessage is returned for blank chat messages
	ErrEmptyMessage = errors.New("message is required")
	// ErrInvalidRadius is returned for non-positive search radii
	ErrInvalidRadius = errors.New("radius must be positive")
)
