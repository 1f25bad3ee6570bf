package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/piresc/ukdrive/internal/pkg/clock"
	"github.com/piresc/ukdrive/internal/pkg/constants"
	"github.com/piresc/ukdrive/internal/pkg/listener"
	"github.com/piresc/ukdrive/internal/pkg/logger"
	"github.com/piresc/ukdrive/internal/pkg/models"
	"github.com/piresc/ukdrive/internal/utils"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultWriteTimeout     = 5 * time.Second
	closeGracePeriod        = time.Second
)

var (
	// ErrMissingActorID is returned by Connect for a blank actor id
	ErrMissingActorID = errors.New("websocket: actor id is required")
	// ErrSuperseded is returned when a Disconnect or another Connect won the race
	ErrSuperseded = errors.New("websocket: connection attempt superseded")
)

// Client is the connection manager of one role. It owns at most one
// connection, identified by the actor it was opened for, and multiplexes
// GPS, chat and lifecycle frames over it. A Client never reconnects on its
// own; see RunHealthCheck.
type Client struct {
	role         models.Role
	url          string
	dialer       *websocket.Dialer
	header       http.Header
	clock        clock.Clock
	writeTimeout time.Duration

	// connectMu serializes Connect and Disconnect
	connectMu sync.Mutex

	mu        sync.RWMutex
	conn      *websocket.Conn
	session   models.ActorSession
	epoch     uint64
	lastActor string

	writeMu sync.Mutex

	positionListeners listener.Registry[models.PositionUpdate]

	messageMu        sync.Mutex
	messageListeners map[string]*listener.Registry[models.Message]
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithDialer replaces the dialer used to open connections
func WithDialer(d *websocket.Dialer) ClientOption {
	return func(c *Client) { c.dialer = d }
}

// WithHeader sets headers sent with the opening handshake, e.g. Authorization
func WithHeader(h http.Header) ClientOption {
	return func(c *Client) { c.header = h }
}

// WithBearerToken sends token as a bearer Authorization header
func WithBearerToken(token string) ClientOption {
	return func(c *Client) {
		if token == "" {
			return
		}
		if c.header == nil {
			c.header = http.Header{}
		}
		c.header.Set("Authorization", "Bearer "+token)
	}
}

// WithClock sets the clock used for frame timestamps and health checks
func WithClock(cl clock.Clock) ClientOption {
	return func(c *Client) { c.clock = cl }
}

// WithWriteTimeout bounds every frame write
func WithWriteTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.writeTimeout = d }
}

// NewClient creates a disconnected connection manager for role
func NewClient(role models.Role, url string, opts ...ClientOption) *Client {
	c := &Client{
		role:             role,
		url:              url,
		dialer:           &websocket.Dialer{Proxy: http.ProxyFromEnvironment, HandshakeTimeout: defaultHandshakeTimeout},
		clock:            clock.New(),
		writeTimeout:     defaultWriteTimeout,
		session:          models.ActorSession{Role: role, State: models.StateDisconnected},
		messageListeners: make(map[string]*listener.Registry[models.Message]),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Role returns the role the client was created for
func (c *Client) Role() models.Role {
	return c.role
}

// Connect opens the connection for actorID and sends the identification
// frame. It is a no-op when already connected for the same actor and
// replaces the connection when connected for a different one.
func (c *Client) Connect(ctx context.Context, actorID string) error {
	if actorID == "" {
		return ErrMissingActorID
	}

	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	c.mu.Lock()
	if c.conn != nil && c.session.ActorID == actorID && c.session.State == models.StateConnected {
		c.mu.Unlock()
		return nil
	}
	previous := c.conn
	previousActor := c.session.ActorID
	c.conn = nil
	c.epoch++
	epoch := c.epoch
	c.lastActor = actorID
	state := models.StateConnecting
	if previousActor == actorID {
		state = models.StateReconnecting
	}
	// connection error is cleared optimistically on every manual attempt
	c.session = models.ActorSession{ActorID: actorID, Role: c.role, State: state}
	c.mu.Unlock()

	if previous != nil {
		logger.Info("Switching websocket actor",
			logger.String("role", string(c.role)),
			logger.String("from", previousActor),
			logger.String("to", actorID))
		c.closeConn(previous, "actor changed")
	}

	conn, _, err := c.dialer.DialContext(ctx, c.url, c.header)
	if err != nil {
		err = fmt.Errorf("dial %s: %w", c.url, err)
		c.markFailed(epoch, err)
		return err
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		conn.Close()
		return ErrSuperseded
	}
	c.conn = conn
	c.session.State = models.StateConnected
	c.mu.Unlock()

	go c.readLoop(conn, epoch)

	identify := map[string]interface{}{
		"type":                 c.role.ConnectEvent(),
		string(c.role) + "Id": actorID,
	}
	if err := c.write(conn, identify); err != nil {
		err = fmt.Errorf("send identification: %w", err)
		c.markFailed(epoch, err)
		conn.Close()
		return err
	}

	logger.Info("WebSocket connected",
		logger.String("role", string(c.role)),
		logger.String("actor_id", actorID))
	return nil
}

// Disconnect closes the connection with a normal closure carrying reason and
// clears the session. It does nothing when already disconnected.
func (c *Client) Disconnect(reason string) {
	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	c.mu.Lock()
	conn := c.conn
	actorID := c.session.ActorID
	c.conn = nil
	c.epoch++
	c.lastActor = ""
	c.session = models.ActorSession{Role: c.role, State: models.StateDisconnected}
	c.mu.Unlock()

	if conn == nil {
		return
	}
	logger.Info("WebSocket disconnecting",
		logger.String("role", string(c.role)),
		logger.String("actor_id", actorID),
		logger.String("reason", reason))
	c.closeConn(conn, reason)
}

// Status returns what UI consumers poll
func (c *Client) Status() models.ConnectionStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return models.ConnectionStatus{
		IsConnected:     c.conn != nil && c.session.State == models.StateConnected,
		ConnectionError: c.session.LastError,
	}
}

// Session returns a copy of the current session record
func (c *Client) Session() models.ActorSession {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// SendPosition sends a <role>_gps frame for the connected actor. It returns
// false when the connection is not open or the write fails.
func (c *Client) SendPosition(lat, lng float64) bool {
	conn, epoch, actorID := c.current()
	if conn == nil {
		return false
	}
	return c.send(conn, epoch, models.GPSMessage{
		Type:      c.role.GPSEvent(),
		UserID:    actorID,
		Latitude:  lat,
		Longitude: lng,
		Timestamp: models.ToUnixMilli(c.clock.Now()),
	})
}

// SendMessage sends {type: kind, ...payload, timestamp}
func (c *Client) SendMessage(kind string, payload map[string]interface{}) bool {
	conn, epoch, _ := c.current()
	if conn == nil {
		return false
	}
	frame := make(map[string]interface{}, len(payload)+2)
	for k, v := range payload {
		frame[k] = v
	}
	frame["type"] = kind
	frame["timestamp"] = models.ToUnixMilli(c.clock.Now())
	return c.send(conn, epoch, frame)
}

// SendChat sends a chat line for rideID using the role's chat kind
func (c *Client) SendChat(rideID, message string) bool {
	conn, epoch, _ := c.current()
	if conn == nil {
		return false
	}
	return c.send(conn, epoch, models.ChatMessage{
		Type:      c.role.ChatEvent(),
		RideID:    rideID,
		Message:   message,
		Timestamp: models.ToUnixMilli(c.clock.Now()),
	})
}

// OnPositionUpdate registers cb for driver_location_update frames
func (c *Client) OnPositionUpdate(cb func(models.PositionUpdate)) listener.Subscription {
	return c.positionListeners.Add(cb)
}

// OnMessage registers cb for frames of the given kind
func (c *Client) OnMessage(kind string, cb func(models.Message)) listener.Subscription {
	c.messageMu.Lock()
	reg, ok := c.messageListeners[kind]
	if !ok {
		reg = &listener.Registry[models.Message]{}
		c.messageListeners[kind] = reg
	}
	c.messageMu.Unlock()
	return reg.Add(cb)
}

// RunHealthCheck polls Status every interval and calls Connect again for the
// last connected actor while the connection is down. It blocks until ctx is
// done. An explicit Disconnect stops it from reconnecting.
func (c *Client) RunHealthCheck(ctx context.Context, interval time.Duration) {
	tick := make(chan struct{}, 1)
	arm := func() clock.Timer {
		return c.clock.AfterFunc(interval, func() {
			select {
			case tick <- struct{}{}:
			default:
			}
		})
	}

	timer := arm()
	defer func() { timer.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			c.checkConnection(ctx)
			timer = arm()
		}
	}
}

func (c *Client) checkConnection(ctx context.Context) {
	if c.Status().IsConnected {
		return
	}
	c.mu.RLock()
	actorID := c.lastActor
	c.mu.RUnlock()
	if actorID == "" {
		return
	}
	if err := c.Connect(ctx, actorID); err != nil {
		logger.Debug("Health check reconnect failed",
			logger.String("role", string(c.role)),
			logger.String("actor_id", actorID),
			logger.Err(err))
	}
}

func (c *Client) current() (*websocket.Conn, uint64, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session.State != models.StateConnected {
		return nil, 0, ""
	}
	return c.conn, c.epoch, c.session.ActorID
}

func (c *Client) send(conn *websocket.Conn, epoch uint64, v interface{}) bool {
	if err := c.write(conn, v); err != nil {
		logger.Warn("WebSocket send failed",
			logger.String("role", string(c.role)),
			logger.Err(err))
		c.markFailed(epoch, err)
		conn.Close()
		return false
	}
	return true
}

func (c *Client) write(conn *websocket.Conn, v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

func (c *Client) closeConn(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, utils.TruncateBytes(reason, constants.CloseReasonMaxLen))
	c.writeMu.Lock()
	err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
	c.writeMu.Unlock()
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		logger.Debug("WebSocket close frame not sent", logger.Err(err))
	}
	conn.Close()
}

// markFailed records err on the session if epoch is still the live connection
func (c *Client) markFailed(epoch uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return
	}
	c.conn = nil
	c.session.State = models.StateDisconnected
	c.session.LastError = err.Error()
}

func (c *Client) readLoop(conn *websocket.Conn, epoch uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.RLock()
			live := c.epoch == epoch
			c.mu.RUnlock()
			if live {
				logger.Warn("WebSocket connection lost",
					logger.String("role", string(c.role)),
					logger.Err(err))
				c.markFailed(epoch, fmt.Errorf("connection lost: %w", err))
			}
			conn.Close()
			return
		}
		c.dispatch(data)
	}
}

func (c *Client) dispatch(data []byte) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		logger.Debug("Dropping malformed websocket frame", logger.Err(err))
		return
	}
	msg := models.Message{Fields: fields, Raw: data}
	msg.Type = msg.String("type")

	if msg.Type == constants.EventDriverLocationUpdate {
		var update models.PositionUpdate
		if err := json.Unmarshal(data, &update); err != nil {
			logger.Debug("Dropping malformed position update", logger.Err(err))
			return
		}
		c.positionListeners.Emit(update)
		return
	}

	c.messageMu.Lock()
	reg := c.messageListeners[msg.Type]
	c.messageMu.Unlock()
	if reg != nil {
		reg.Emit(msg)
	}
}
