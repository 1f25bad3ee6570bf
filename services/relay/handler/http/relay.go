package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/piresc/ukdrive/internal/pkg/logger"
	"github.com/piresc/ukdrive/internal/pkg/models"
	"github.com/piresc/ukdrive/internal/utils"
	"github.com/piresc/ukdrive/services/relay"
)

// RelayHandler handles HTTP requests for the relay's read side
type RelayHandler struct {
	relayUC       relay.RelayUC
	defaultRadius float64
}

// NewRelayHandler creates a new relay HTTP handler. defaultRadiusKm is used
// when a nearby query carries no radius_km.
func NewRelayHandler(relayUC relay.RelayUC, defaultRadiusKm float64) *RelayHandler {
	return &RelayHandler{
		relayUC:       relayUC,
		defaultRadius: defaultRadiusKm,
	}
}

// FindNearbyDrivers lists the drivers around lat/lng, nearest first
func (h *RelayHandler) FindNearbyDrivers(c echo.Context) error {
	latStr := c.QueryParam("lat")
	lngStr := c.QueryParam("lng")
	if latStr == "" || lngStr == "" {
		return utils.BadRequestResponse(c, "lat and lng are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return utils.BadRequestResponse(c, "invalid latitude")
	}

	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return utils.BadRequestResponse(c, "invalid longitude")
	}

	radius := h.defaultRadius
	if radiusStr := c.QueryParam("radius_km"); radiusStr != "" {
		radius, err = strconv.ParseFloat(radiusStr, 64)
		if err != nil {
			return utils.BadRequestResponse(c, "invalid radius_km")
		}
	}

	point := models.GeoPoint{Latitude: lat, Longitude: lng}
	drivers, err := h.relayUC.GetNearbyDrivers(c.Request().Context(), point, radius)
	if err != nil {
		if errors.Is(err, relay.ErrInvalidLocation) || errors.Is(err, relay.ErrInvalidRadius) {
			return utils.BadRequestResponse(c, err.Error())
		}
		logger.Error("Failed to find nearby drivers",
			logger.Float64("latitude", lat),
			logger.Float64("longitude", lng),
			logger.Err(err))
		return utils.InternalServerErrorResponse(c, "failed to find nearby drivers")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Nearby drivers retrieved successfully", drivers)
}

// GetDriverLocation returns the last-known position of a driver
func (h *RelayHandler) GetDriverLocation(c echo.Context) error {
	driverID := c.Param("id")
	if driverID == "" {
		return utils.BadRequestResponse(c, "driver_id is required")
	}

	location, err := h.relayUC.GetDriverLocation(c.Request().Context(), driverID)
	if err != nil {
		if errors.Is(err, relay.ErrLocationNotFound) {
			return utils.NotFoundResponse(c, "driver location not found")
		}
		logger.Error("Failed to get driver location",
			logger.String("driver_id", driverID),
			logger.Err(err))
		return utils.InternalServerErrorResponse(c, "failed to get driver location")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Driver location retrieved successfully", location)
}
