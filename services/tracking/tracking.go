// Package tracking holds the contracts shared by the client-side location
// components: the transport the outbound pipeline pushes through, the device
// position source it reads from and the REST backend it persists to.
package tracking

import (
	"context"

	"github.com/piresc/ukdrive/internal/pkg/models"
)

// Transport is the part of the connection manager the outbound pipeline drives
type Transport interface {
	Connect(ctx context.Context, actorID string) error
	SendPosition(lat, lng float64) bool
}

// PositionSource acquires device positions
type PositionSource interface {
	// Current performs a single acquisition. Timeouts are reported as
	// ErrAcquisitionTimeout.
	Current(ctx context.Context, highAccuracy bool) (models.Position, error)

	// Watch starts continuous acquisition. onSample and onError are called
	// from the source's goroutine until the returned cancel func is called.
	Watch(highAccuracy bool, onSample func(models.Position), onError func(error)) (cancel func())
}

// LocationGW defines the REST persistence operations
type LocationGW interface {
	UpdateDriverLocation(ctx context.Context, driverID string, point models.GeoPoint) error
	DriverHeartbeat(ctx context.Context, driverID string, point models.GeoPoint) error
	UpdateDriverStatus(ctx context.Context, driverID string, patch models.DriverStatusPatch) error
	UpdatePassengerLocation(ctx context.Context, userID string, point models.GeoPoint) error
	ClearPassengerLocation(ctx context.Context, userID string) error
}
