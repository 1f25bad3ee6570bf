package handler

import (
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/piresc/ukdrive/internal/pkg/models"
	pkgws "github.com/piresc/ukdrive/internal/pkg/websocket"
	"github.com/piresc/ukdrive/services/relay/handler/http"
	"github.com/piresc/ukdrive/services/relay/handler/nats"
	"github.com/piresc/ukdrive/services/relay/handler/websocket"
	"github.com/piresc/ukdrive/services/relay/metrics"
	"github.com/piresc/ukdrive/services/relay/mocks"
	"github.com/stretchr/testify/assert"
)

func TestRegisterRoutes(t *testing.T) {
	// Arrange
	ctrl := gomock.NewController(t)
	mockUC := mocks.NewMockRelayUC(ctrl)
	manager := pkgws.NewManager(models.JWTConfig{})
	h := NewHandler(
		http.NewRelayHandler(mockUC, 5),
		websocket.NewWebSocketManager(mockUC, manager, nil),
		nats.NewNatsHandler(manager, nil, nil),
	)
	e := echo.New()
	h.RegisterRoutes(e)
	metrics.FanoutDeliveries.Add(0)

	mockUC.EXPECT().GetDriverLocation(gomock.Any(), "driver-1").Return(&models.DriverLocationEvent{DriverID: "driver-1"}, nil)

	// Act
	metricsRec := httptest.NewRecorder()
	e.ServeHTTP(metricsRec, httptest.NewRequest(stdhttp.MethodGet, "/metrics", nil))
	locationRec := httptest.NewRecorder()
	e.ServeHTTP(locationRec, httptest.NewRequest(stdhttp.MethodGet, "/api/drivers/driver-1/location", nil))
	wsRec := httptest.NewRecorder()
	e.ServeHTTP(wsRec, httptest.NewRequest(stdhttp.MethodGet, "/ws", nil))

	// Assert
	assert.Equal(t, stdhttp.StatusOK, metricsRec.Code)
	assert.Contains(t, metricsRec.Body.String(), "relay_fanout_deliveries_total")
	assert.Equal(t, stdhttp.StatusOK, locationRec.Code)
	assert.Equal(t, stdhttp.StatusBadRequest, wsRec.Code, "plain GET is not a websocket upgrade")
}
