package relay

import (
	"context"
	"time"

	"github.com/piresc/ukdrive/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_usecase.go -package=mocks github.com/piresc/ukdrive/services/relay RelayUC

// RelayUC defines the relay business logic
type RelayUC interface {
	// Location ingestion from connected clients
	UpdateDriverLocation(ctx context.Context, driverID string, point models.GeoPoint, at time.Time) error
	UpdatePassengerLocation(ctx context.Context, passengerID string, point models.GeoPoint, at time.Time) (cell string, err error)

	// Chat relay
	RelayChat(ctx context.Context, msg models.ChatRelay) error

	// Read side
	GetNearbyDrivers(ctx context.Context, point models.GeoPoint, radiusKm float64) ([]models.NearbyActor, error)
	GetDriverLocation(ctx context.Context, driverID string) (*models.DriverLocationEvent, error)

	// Connection lifecycle
	DriverDisconnected(ctx context.Context, driverID string) error
	PassengerDisconnected(ctx context.Context, passengerID string) error
}
