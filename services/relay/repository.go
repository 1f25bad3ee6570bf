package relay

import (
	"context"
	"time"

	"github.com/piresc/ukdrive/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks github.com/piresc/ukdrive/services/relay LocationRepo

// LocationRepo defines the last-known position store
type LocationRepo interface {
	// Driver positions
	StoreDriverLocation(ctx context.Context, driverID string, point models.GeoPoint, at time.Time) error
	GetDriverLocation(ctx context.Context, driverID string) (*models.DriverLocationEvent, error)
	NearbyDrivers(ctx context.Context, point models.GeoPoint, radiusKm float64) ([]models.NearbyActor, error)
	RemoveDriver(ctx context.Context, driverID string) error

	// Passenger positions
	StorePassengerLocation(ctx context.Context, passengerID string, point models.GeoPoint, cell string, at time.Time) error
	RemovePassenger(ctx context.Context, passengerID string) error
}
