package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/piresc/ukdrive/internal/pkg/constants"
	"github.com/piresc/ukdrive/internal/pkg/models"
	"github.com/piresc/ukdrive/internal/utils"
	"github.com/piresc/ukdrive/services/relay"
)

type relayUC struct {
	repo relay.LocationRepo
	gw   relay.RelayGW
}

// NewRelayUC creates a new relay use case
func NewRelayUC(repo relay.LocationRepo, gw relay.RelayGW) relay.RelayUC {
	return &relayUC{
		repo: repo,
		gw:   gw,
	}
}

// UpdateDriverLocation stores the driver's position and publishes it for fan-out
func (uc *relayUC) UpdateDriverLocation(ctx context.Context, driverID string, point models.GeoPoint, at time.Time) error {
	if !point.Valid() {
		return fmt.Errorf("%w: %f,%f", relay.ErrInvalidLocation, point.Latitude, point.Longitude)
	}

	if err := uc.repo.StoreDriverLocation(ctx, driverID, point, at); err != nil {
		return fmt.Errorf("failed to store driver location: %w", err)
	}

	event := models.DriverLocationEvent{
		DriverID:  driverID,
		Latitude:  point.Latitude,
		Longitude: point.Longitude,
		Timestamp: at.UnixMilli(),
	}
	if err := uc.gw.PublishDriverLocation(ctx, event); err != nil {
		return fmt.Errorf("failed to publish driver location: %w", err)
	}
	return nil
}

// UpdatePassengerLocation stores the passenger's position and returns the
// fan-out cell it falls in
func (uc *relayUC) UpdatePassengerLocation(ctx context.Context, passengerID string, point models.GeoPoint, at time.Time) (string, error) {
	if !point.Valid() {
		return "", fmt.Errorf("%w: %f,%f", relay.ErrInvalidLocation, point.Latitude, point.Longitude)
	}

	cell := utils.Cell(point, constants.FanoutCellPrecision)
	if err := uc.repo.StorePassengerLocation(ctx, passengerID, point, cell, at); err != nil {
		return "", fmt.Errorf("failed to store passenger location: %w", err)
	}
	return cell, nil
}

// RelayChat publishes a chat message to the ride's participants
func (uc *relayUC) RelayChat(ctx context.Context, msg models.ChatRelay) error {
	msg.RideID = strings.TrimSpace(msg.RideID)
	if msg.RideID == "" {
		return relay.ErrMissingRideID
	}
	if strings.TrimSpace(msg.Message) == "" {
		return relay.ErrEmptyMessage
	}
	return uc.gw.PublishChat(ctx, msg)
}

// GetNearbyDrivers returns the drivers within radiusKm of point
func (uc *relayUC) GetNearbyDrivers(ctx context.Context, point models.GeoPoint, radiusKm float64) ([]models.NearbyActor, error) {
	if !point.Valid() {
		return nil, fmt.Errorf("%w: %f,%f", relay.ErrInvalidLocation, point.Latitude, point.Longitude)
	}
	if radiusKm <= 0 {
		return nil, relay.ErrInvalidRadius
	}
	return uc.repo.NearbyDrivers(ctx, point, radiusKm)
}

// GetDriverLocation returns the last-known position of a driver
func (uc *relayUC) GetDriverLocation(ctx context.Context, driverID string) (*models.DriverLocationEvent, error) {
	return uc.repo.GetDriverLocation(ctx, driverID)
}

// DriverDisconnected hides the driver from nearby lookups
func (uc *relayUC) DriverDisconnected(ctx context.Context, driverID string) error {
	return uc.repo.RemoveDriver(ctx, driverID)
}

// PassengerDisconnected forgets the passenger's position
func (uc *relayUC) PassengerDisconnected(ctx context.Context, passengerID string) error {
	return uc.repo.RemovePassenger(ctx, passengerID)
}
