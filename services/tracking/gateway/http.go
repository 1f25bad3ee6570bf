package gateway

import (
	"context"
	"fmt"

	"github.com/piresc/ukdrive/internal/pkg/constants"
	httpclient "github.com/piresc/ukdrive/internal/pkg/http"
	"github.com/piresc/ukdrive/internal/pkg/models"
)

// HTTPGateway implements the REST persistence operations of the tracking client
type HTTPGateway struct {
	client *httpclient.Client
}

// NewHTTPGateway creates a new HTTP gateway over client
func NewHTTPGateway(client *httpclient.Client) *HTTPGateway {
	return &HTTPGateway{client: client}
}

// UpdateDriverLocation stores the driver's position and marks it as sharing
func (g *HTTPGateway) UpdateDriverLocation(ctx context.Context, driverID string, point models.GeoPoint) error {
	body := models.DriverLocationRequest{
		Latitude:          point.Latitude,
		Longitude:         point.Longitude,
		IsLocationSharing: true,
	}
	if err := g.client.PatchJSON(ctx, fmt.Sprintf(constants.PathDriverLocation, driverID), body); err != nil {
		return fmt.Errorf("failed to update driver location: %w", err)
	}
	return nil
}

// DriverHeartbeat keeps the driver's availability fresh on the server
func (g *HTTPGateway) DriverHeartbeat(ctx context.Context, driverID string, point models.GeoPoint) error {
	body := models.HeartbeatRequest{
		Latitude:  point.Latitude,
		Longitude: point.Longitude,
	}
	if err := g.client.PostJSON(ctx, fmt.Sprintf(constants.PathDriverHeartbeat, driverID), body); err != nil {
		return fmt.Errorf("failed to send driver heartbeat: %w", err)
	}
	return nil
}

// UpdateDriverStatus patches the driver's sharing and availability flags
func (g *HTTPGateway) UpdateDriverStatus(ctx context.Context, driverID string, patch models.DriverStatusPatch) error {
	if err := g.client.PatchJSON(ctx, fmt.Sprintf(constants.PathDriver, driverID), patch); err != nil {
		return fmt.Errorf("failed to update driver status: %w", err)
	}
	return nil
}

// UpdatePassengerLocation stores the passenger's position
func (g *HTTPGateway) UpdatePassengerLocation(ctx context.Context, userID string, point models.GeoPoint) error {
	body := models.UserLocationRequest{
		Latitude:  models.Float64Ptr(point.Latitude),
		Longitude: models.Float64Ptr(point.Longitude),
	}
	if err := g.client.PatchJSON(ctx, fmt.Sprintf(constants.PathUserLocation, userID), body); err != nil {
		return fmt.Errorf("failed to update passenger location: %w", err)
	}
	return nil
}

// ClearPassengerLocation nulls the passenger's stored position
func (g *HTTPGateway) ClearPassengerLocation(ctx context.Context, userID string) error {
	if err := g.client.PatchJSON(ctx, fmt.Sprintf(constants.PathUser, userID), models.UserLocationRequest{}); err != nil {
		return fmt.Errorf("failed to clear passenger location: %w", err)
	}
	return nil
}
