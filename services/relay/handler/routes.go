package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/piresc/ukdrive/services/relay/handler/http"
	"github.com/piresc/ukdrive/services/relay/handler/nats"
	"github.com/piresc/ukdrive/services/relay/handler/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler coordinates all protocol handlers for the relay service
type Handler struct {
	relayHandler *http.RelayHandler
	wsManager    *websocket.WebSocketManager
	natsHandler  *nats.NatsHandler
}

// NewHandler creates and initializes all handlers
func NewHandler(
	relayHandler *http.RelayHandler,
	wsManager *websocket.WebSocketManager,
	natsHandler *nats.NatsHandler,
) *Handler {
	return &Handler{
		relayHandler: relayHandler,
		wsManager:    wsManager,
		natsHandler:  natsHandler,
	}
}

// RegisterRoutes registers the WebSocket, read API and metrics routes
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.wsManager.HandleWebSocket)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.GET("/drivers/nearby", h.relayHandler.FindNearbyDrivers)
	api.GET("/drivers/:id/location", h.relayHandler.GetDriverLocation)
}

// InitNATSConsumers starts the broker consumers
func (h *Handler) InitNATSConsumers() error {
	return h.natsHandler.InitNATSConsumers()
}

// Close stops the broker consumers
func (h *Handler) Close() {
	h.natsHandler.Close()
}
