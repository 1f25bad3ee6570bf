package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/piresc/ukdrive/internal/pkg/constants"
	"github.com/piresc/ukdrive/internal/pkg/database"
	"github.com/piresc/ukdrive/internal/pkg/models"
	"github.com/piresc/ukdrive/services/relay"
)

type locationRepo struct {
	redisClient *database.RedisClient
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(redisClient *database.RedisClient) relay.LocationRepo {
	return &locationRepo{
		redisClient: redisClient,
	}
}

// StoreDriverLocation moves the driver in the GEO set and overwrites its
// last-known hash
func (r *locationRepo) StoreDriverLocation(ctx context.Context, driverID string, point models.GeoPoint, at time.Time) error {
	if err := r.redisClient.GeoAdd(ctx, constants.KeyDriverGeo, point.Longitude, point.Latitude, driverID); err != nil {
		return fmt.Errorf("failed to add driver to geo set: %w", err)
	}

	locationKey := fmt.Sprintf(constants.KeyDriverLocation, driverID)
	if err := r.redisClient.HSet(ctx, locationKey, locationFields(point, at)); err != nil {
		return fmt.Errorf("failed to store driver location: %w", err)
	}

	if err := r.redisClient.Expire(ctx, locationKey, constants.DriverLocationTTL); err != nil {
		return fmt.Errorf("failed to set driver location TTL: %w", err)
	}

	return nil
}

// GetDriverLocation returns the last-known position of a driver
func (r *locationRepo) GetDriverLocation(ctx context.Context, driverID string) (*models.DriverLocationEvent, error) {
	locationKey := fmt.Sprintf(constants.KeyDriverLocation, driverID)

	values, err := r.redisClient.HGetAll(ctx, locationKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get driver location: %w", err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: driver %s", relay.ErrLocationNotFound, driverID)
	}

	lat, err := strconv.ParseFloat(values[constants.FieldLatitude], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude: %w", err)
	}

	lng, err := strconv.ParseFloat(values[constants.FieldLongitude], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude: %w", err)
	}

	ts, err := strconv.ParseInt(values[constants.FieldTimestamp], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp: %w", err)
	}

	return &models.DriverLocationEvent{
		DriverID:  driverID,
		Latitude:  lat,
		Longitude: lng,
		Timestamp: ts,
	}, nil
}

// NearbyDrivers returns the drivers within radiusKm of point, nearest first
func (r *locationRepo) NearbyDrivers(ctx context.Context, point models.GeoPoint, radiusKm float64) ([]models.NearbyActor, error) {
	results, err := r.redisClient.GeoRadius(ctx, constants.KeyDriverGeo, point.Longitude, point.Latitude, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("failed to find nearby drivers: %w", err)
	}

	drivers := make([]models.NearbyActor, 0, len(results))
	for _, loc := range results {
		drivers = append(drivers, models.NearbyActor{
			ActorID:    loc.Name,
			Latitude:   loc.Latitude,
			Longitude:  loc.Longitude,
			DistanceKm: loc.Dist,
		})
	}
	return drivers, nil
}

// RemoveDriver drops the driver from the GEO set. The last-known hash is
// kept until its TTL runs out.
func (r *locationRepo) RemoveDriver(ctx context.Context, driverID string) error {
	if err := r.redisClient.GeoRemove(ctx, constants.KeyDriverGeo, driverID); err != nil {
		return fmt.Errorf("failed to remove driver from geo set: %w", err)
	}
	return nil
}

// StorePassengerLocation moves the passenger in the GEO set and records the
// fan-out cell next to the position
func (r *locationRepo) StorePassengerLocation(ctx context.Context, passengerID string, point models.GeoPoint, cell string, at time.Time) error {
	if err := r.redisClient.GeoAdd(ctx, constants.KeyPassengerGeo, point.Longitude, point.Latitude, passengerID); err != nil {
		return fmt.Errorf("failed to add passenger to geo set: %w", err)
	}

	fields := locationFields(point, at)
	fields[constants.FieldCell] = cell

	locationKey := fmt.Sprintf(constants.KeyPassengerLocation, passengerID)
	if err := r.redisClient.HSet(ctx, locationKey, fields); err != nil {
		return fmt.Errorf("failed to store passenger location: %w", err)
	}

	if err := r.redisClient.Expire(ctx, locationKey, constants.DriverLocationTTL); err != nil {
		return fmt.Errorf("failed to set passenger location TTL: %w", err)
	}

	return nil
}

// RemovePassenger drops the passenger from the GEO set and deletes its hash
func (r *locationRepo) RemovePassenger(ctx context.Context, passengerID string) error {
	if err := r.redisClient.GeoRemove(ctx, constants.KeyPassengerGeo, passengerID); err != nil {
		return fmt.Errorf("failed to remove passenger from geo set: %w", err)
	}
	if err := r.redisClient.Delete(ctx, fmt.Sprintf(constants.KeyPassengerLocation, passengerID)); err != nil {
		return fmt.Errorf("failed to delete passenger location: %w", err)
	}
	return nil
}

func locationFields(point models.GeoPoint, at time.Time) map[string]interface{} {
	return map[string]interface{}{
		constants.FieldLatitude:  strconv.FormatFloat(point.Latitude, 'f', -1, 64),
		constants.FieldLongitude: strconv.FormatFloat(point.Longitude, 'f', -1, 64),
		constants.FieldTimestamp: strconv.FormatInt(at.UnixMilli(), 10),
	}
}
