package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/piresc/ukdrive/internal/pkg/constants"
	"github.com/piresc/ukdrive/internal/pkg/logger"
	"github.com/piresc/ukdrive/internal/pkg/models"
	nrpkg "github.com/piresc/ukdrive/internal/pkg/newrelic"
	pkgws "github.com/piresc/ukdrive/internal/pkg/websocket"
	"github.com/piresc/ukdrive/services/relay"
	"github.com/piresc/ukdrive/services/relay/metrics"
)

type frameAction int

const (
	actionConnect frameAction = iota
	actionGPS
	actionChat
)

type frameRoute struct {
	role   models.Role
	action frameAction
}

var routes = map[string]frameRoute{
	constants.EventDriverConnect:    {models.RoleDriver, actionConnect},
	constants.EventPassengerConnect: {models.RolePassenger, actionConnect},
	constants.EventDriverGPS:        {models.RoleDriver, actionGPS},
	constants.EventPassengerGPS:     {models.RolePassenger, actionGPS},
	constants.EventDriverChat:       {models.RoleDriver, actionChat},
	constants.EventPassengerChat:    {models.RolePassenger, actionChat},
}

// WebSocketManager serves the relay's WebSocket endpoint
type WebSocketManager struct {
	relayUC relay.RelayUC
	manager *pkgws.Manager
	nrApp   *newrelic.Application
}

// NewWebSocketManager creates a new WebSocket handler
func NewWebSocketManager(relayUC relay.RelayUC, manager *pkgws.Manager, nrApp *newrelic.Application) *WebSocketManager {
	return &WebSocketManager{
		relayUC: relayUC,
		manager: manager,
		nrApp:   nrApp,
	}
}

// HandleWebSocket upgrades the request and serves frames until the peer goes away
func (m *WebSocketManager) HandleWebSocket(c echo.Context) error {
	return m.manager.HandleConnection(c, m.servePeer)
}

func (m *WebSocketManager) servePeer(peer *pkgws.Peer) error {
	logger.Debug("WebSocket peer connected", logger.String("peer_id", peer.ID))
	defer m.disconnected(peer)

	for {
		data, err := peer.ReadMessage()
		if err != nil {
			if !pkgws.IsNormalClose(err) {
				logger.Warn("WebSocket read failed",
					logger.String("peer_id", peer.ID),
					logger.Err(err))
			}
			return nil
		}

		if err := m.handleFrame(peer, data); err != nil {
			logger.Error("Error handling frame",
				logger.String("peer_id", peer.ID),
				logger.Err(err))
		}
	}
}

func (m *WebSocketManager) handleFrame(peer *pkgws.Peer, data []byte) error {
	var frame models.Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		metrics.FramesReceived.WithLabelValues("unknown", metrics.ResultRejected).Inc()
		return m.manager.SendErrorMessage(peer, constants.ErrorInvalidFormat, "Invalid message format")
	}

	route, ok := routes[frame.Type]
	if !ok {
		metrics.FramesReceived.WithLabelValues("unknown", metrics.ResultRejected).Inc()
		return m.manager.SendErrorMessage(peer, constants.ErrorInvalidFormat, "Unsupported message type: "+frame.Type)
	}

	ctx, end := nrpkg.StartTransaction(context.Background(), m.nrApp, "ws/"+frame.Type)
	defer end()

	role, actorID := peer.Identity()
	if route.action != actionConnect {
		if actorID == "" {
			metrics.FramesReceived.WithLabelValues(frame.Type, metrics.ResultRejected).Inc()
			return m.manager.SendErrorMessage(peer, constants.ErrorNotIdentified, "Send "+route.role.ConnectEvent()+" first")
		}
		if role != route.role {
			metrics.FramesReceived.WithLabelValues(frame.Type, metrics.ResultRejected).Inc()
			return m.manager.SendCategorizedError(peer,
				fmt.Errorf("%s sent %s", role, frame.Type),
				constants.ErrorUnauthorized, constants.ErrorSeveritySecurity)
		}
	}

	var err error
	switch route.action {
	case actionConnect:
		err = m.handleConnect(peer, route.role, data)
	case actionGPS:
		err = m.handleGPS(ctx, peer, role, actorID, data)
	case actionChat:
		err = m.handleChat(ctx, peer, role, actorID, data)
	}
	if err != nil {
		nrpkg.NoticeError(ctx, err)
	}
	return err
}

func (m *WebSocketManager) handleConnect(peer *pkgws.Peer, role models.Role, data []byte) error {
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return m.manager.SendErrorMessage(peer, constants.ErrorInvalidFormat, "Invalid connect format")
	}

	idField := string(role) + "Id"
	actorID, _ := fields[idField].(string)
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		metrics.FramesReceived.WithLabelValues(role.ConnectEvent(), metrics.ResultRejected).Inc()
		return m.manager.SendErrorMessage(peer, constants.ErrorValidationFailed, idField+" is required")
	}

	if peer.Claims != nil && peer.Claims.UserID != actorID {
		metrics.FramesReceived.WithLabelValues(role.ConnectEvent(), metrics.ResultRejected).Inc()
		return m.manager.SendCategorizedError(peer,
			fmt.Errorf("token subject %s identified as %s", peer.Claims.UserID, actorID),
			constants.ErrorUnauthorized, constants.ErrorSeveritySecurity)
	}

	if currentRole, currentID := peer.Identity(); currentID != "" {
		if currentRole == role && currentID == actorID {
			return nil
		}
		metrics.FramesReceived.WithLabelValues(role.ConnectEvent(), metrics.ResultRejected).Inc()
		return m.manager.SendErrorMessage(peer, constants.ErrorValidationFailed, "Connection already identified")
	}

	peer.Identify(role, actorID)
	m.manager.Register(peer)
	m.updatePeerGauge(role)
	metrics.FramesReceived.WithLabelValues(role.ConnectEvent(), metrics.ResultAccepted).Inc()

	logger.Info("WebSocket peer identified",
		logger.String("peer_id", peer.ID),
		logger.String("role", string(role)),
		logger.String("actor_id", actorID))
	return nil
}

func (m *WebSocketManager) handleGPS(ctx context.Context, peer *pkgws.Peer, role models.Role, actorID string, data []byte) error {
	var msg models.GPSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		metrics.FramesReceived.WithLabelValues(role.GPSEvent(), metrics.ResultRejected).Inc()
		return m.manager.SendErrorMessage(peer, constants.ErrorInvalidFormat, "Invalid location format")
	}

	point := models.GeoPoint{Latitude: msg.Latitude, Longitude: msg.Longitude}
	at := models.UnixMilli(msg.Timestamp)
	if at.IsZero() {
		at = time.Now()
	}

	var err error
	if role == models.RoleDriver {
		err = m.relayUC.UpdateDriverLocation(ctx, actorID, point, at)
	} else {
		var cell string
		cell, err = m.relayUC.UpdatePassengerLocation(ctx, actorID, point, at)
		if err == nil {
			peer.SetCell(cell)
		}
	}

	switch {
	case err == nil:
		metrics.FramesReceived.WithLabelValues(role.GPSEvent(), metrics.ResultAccepted).Inc()
		return nil
	case errors.Is(err, relay.ErrInvalidLocation):
		metrics.FramesReceived.WithLabelValues(role.GPSEvent(), metrics.ResultRejected).Inc()
		return m.manager.SendCategorizedError(peer, err, constants.ErrorInvalidLocation, constants.ErrorSeverityClient)
	default:
		metrics.FramesReceived.WithLabelValues(role.GPSEvent(), metrics.ResultFailed).Inc()
		return m.manager.SendCategorizedError(peer, err, constants.ErrorInternalError, constants.ErrorSeverityServer)
	}
}

func (m *WebSocketManager) handleChat(ctx context.Context, peer *pkgws.Peer, role models.Role, actorID string, data []byte) error {
	var msg models.ChatMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		metrics.FramesReceived.WithLabelValues(role.ChatEvent(), metrics.ResultRejected).Inc()
		return m.manager.SendErrorMessage(peer, constants.ErrorInvalidFormat, "Invalid chat format")
	}

	timestamp := msg.Timestamp
	if timestamp <= 0 {
		timestamp = time.Now().UnixMilli()
	}

	err := m.relayUC.RelayChat(ctx, models.ChatRelay{
		RideID:     msg.RideID,
		SenderRole: role,
		SenderID:   actorID,
		Message:    msg.Message,
		Timestamp:  timestamp,
	})

	switch {
	case err == nil:
		metrics.FramesReceived.WithLabelValues(role.ChatEvent(), metrics.ResultAccepted).Inc()
		return nil
	case errors.Is(err, relay.ErrMissingRideID), errors.Is(err, relay.ErrEmptyMessage):
		metrics.FramesReceived.WithLabelValues(role.ChatEvent(), metrics.ResultRejected).Inc()
		return m.manager.SendCategorizedError(peer, err, constants.ErrorValidationFailed, constants.ErrorSeverityClient)
	default:
		metrics.FramesReceived.WithLabelValues(role.ChatEvent(), metrics.ResultFailed).Inc()
		return m.manager.SendCategorizedError(peer, err, constants.ErrorInternalError, constants.ErrorSeverityServer)
	}
}

// disconnected forgets the actor's position unless a newer connection of the
// same actor has taken over
func (m *WebSocketManager) disconnected(peer *pkgws.Peer) {
	role, actorID := peer.Identity()
	if actorID == "" {
		return
	}

	current, ok := m.manager.GetPeer(role, actorID)
	m.manager.Unregister(peer)
	m.updatePeerGauge(role)
	if !ok || current != peer {
		return
	}

	ctx := context.Background()
	var err error
	if role == models.RoleDriver {
		err = m.relayUC.DriverDisconnected(ctx, actorID)
	} else {
		err = m.relayUC.PassengerDisconnected(ctx, actorID)
	}
	if err != nil {
		logger.Warn("Failed to clear position of disconnected actor",
			logger.String("role", string(role)),
			logger.String("actor_id", actorID),
			logger.Err(err))
	}

	logger.Info("WebSocket peer disconnected",
		logger.String("peer_id", peer.ID),
		logger.String("role", string(role)),
		logger.String("actor_id", actorID))
}

func (m *WebSocketManager) updatePeerGauge(role models.Role) {
	metrics.ConnectedPeers.WithLabelValues(string(role)).Set(float64(len(m.manager.Peers(role))))
}
