package websocket

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/piresc/ukdrive/internal/pkg/constants"
	jwtpkg "github.com/piresc/ukdrive/internal/pkg/jwt"
	"github.com/piresc/ukdrive/internal/pkg/logger"
	"github.com/piresc/ukdrive/internal/pkg/models"
)

// Peer is one server-side connection. It is anonymous until identified by
// its first <role>_connect frame.
type Peer struct {
	ID     string
	Claims *jwtpkg.Claims

	conn         *websocket.Conn
	writeMu      sync.Mutex
	writeTimeout time.Duration

	mu      sync.RWMutex
	role    models.Role
	actorID string
	cell    string
}

// Identify binds the peer to an actor
func (p *Peer) Identify(role models.Role, actorID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.role = role
	p.actorID = actorID
}

// Identity returns the bound actor, empty until identified
func (p *Peer) Identity() (models.Role, string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.role, p.actorID
}

// SetCell records the geohash cell of the peer's last position
func (p *Peer) SetCell(cell string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cell = cell
}

// Cell returns the geohash cell of the peer's last position
func (p *Peer) Cell() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cell
}

// ReadMessage reads the next frame
func (p *Peer) ReadMessage() ([]byte, error) {
	_, data, err := p.conn.ReadMessage()
	return data, err
}

// Send writes v as a JSON text frame
func (p *Peer) Send(v interface{}) error {
	if p.conn == nil {
		return nil // Handle nil connection gracefully for tests
	}
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if err := p.conn.SetWriteDeadline(time.Now().Add(p.writeTimeout)); err != nil {
		return err
	}
	return p.conn.WriteJSON(v)
}

func peerKey(role models.Role, actorID string) string {
	return string(role) + ":" + actorID
}

// Manager manages WebSocket connections and client state
type Manager struct {
	sync.RWMutex
	peers    map[string]*Peer
	cfg      models.JWTConfig
	upgrader websocket.Upgrader
}

// NewManager creates a new WebSocket manager. Connections must carry a valid
// bearer token when jwtConfig.Secret is set.
func NewManager(jwtConfig models.JWTConfig) *Manager {
	return &Manager{
		peers: make(map[string]*Peer),
		cfg:   jwtConfig,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleConnection authenticates, upgrades and hands the connection to
// handlePeer. The peer is unregistered and closed when handlePeer returns.
func (m *Manager) HandleConnection(c echo.Context, handlePeer func(*Peer) error) error {
	claims, err := m.authenticate(c)
	if err != nil {
		return err
	}

	ws, err := m.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	peer := &Peer{
		ID:           uuid.NewString(),
		Claims:       claims,
		conn:         ws,
		writeTimeout: defaultWriteTimeout,
	}
	defer m.Unregister(peer)

	return handlePeer(peer)
}

func (m *Manager) authenticate(c echo.Context) (*jwtpkg.Claims, error) {
	if m.cfg.Secret == "" {
		return nil, nil
	}

	token := c.QueryParam("token")
	if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
		}
		token = parts[1]
	}
	if token == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is required")
	}

	claims, err := jwtpkg.ValidateToken(token, m.cfg)
	if err != nil {
		logger.Warn("Token validation failed",
			logger.Err(err))
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	return claims, nil
}

// Register indexes an identified peer, replacing an older connection of the
// same actor
func (m *Manager) Register(peer *Peer) {
	role, actorID := peer.Identity()
	m.Lock()
	defer m.Unlock()
	m.peers[peerKey(role, actorID)] = peer
}

// Unregister removes peer if it is still the registered connection of its actor
func (m *Manager) Unregister(peer *Peer) {
	role, actorID := peer.Identity()
	if actorID == "" {
		return
	}
	m.Lock()
	defer m.Unlock()
	key := peerKey(role, actorID)
	if m.peers[key] == peer {
		delete(m.peers, key)
	}
}

// GetPeer returns the connection of an actor
func (m *Manager) GetPeer(role models.Role, actorID string) (*Peer, bool) {
	m.RLock()
	defer m.RUnlock()
	peer, exists := m.peers[peerKey(role, actorID)]
	return peer, exists
}

// Peers returns a snapshot of the connections of role
func (m *Manager) Peers(role models.Role) []*Peer {
	m.RLock()
	defer m.RUnlock()
	out := make([]*Peer, 0, len(m.peers))
	for _, peer := range m.peers {
		if r, _ := peer.Identity(); r == role {
			out = append(out, peer)
		}
	}
	return out
}

// Count returns the number of identified connections
func (m *Manager) Count() int {
	m.RLock()
	defer m.RUnlock()
	return len(m.peers)
}

// NotifyClient sends a frame to a specific actor. It reports whether the
// actor is connected and the write succeeded.
func (m *Manager) NotifyClient(role models.Role, actorID string, frame interface{}) bool {
	peer, exists := m.GetPeer(role, actorID)
	if !exists {
		return false
	}

	if err := peer.Send(frame); err != nil {
		logger.Warn("Error sending message to client",
			logger.String("role", string(role)),
			logger.String("actor_id", actorID),
			logger.Err(err))
		return false
	}
	return true
}

// NotifyActor sends a frame to actorID under whichever role it is connected as
func (m *Manager) NotifyActor(actorID string, frame interface{}) bool {
	delivered := false
	for _, role := range []models.Role{models.RoleDriver, models.RolePassenger} {
		if m.NotifyClient(role, actorID, frame) {
			delivered = true
		}
	}
	return delivered
}

// NotifyCells sends a frame to every peer of role whose last cell is one of
// cells and returns how many writes succeeded
func (m *Manager) NotifyCells(role models.Role, cells []string, frame interface{}) int {
	wanted := make(map[string]struct{}, len(cells))
	for _, cell := range cells {
		wanted[cell] = struct{}{}
	}

	delivered := 0
	for _, peer := range m.Peers(role) {
		if _, ok := wanted[peer.Cell()]; !ok {
			continue
		}
		if err := peer.Send(frame); err != nil {
			_, actorID := peer.Identity()
			logger.Warn("Error sending message to client",
				logger.String("role", string(role)),
				logger.String("actor_id", actorID),
				logger.Err(err))
			continue
		}
		delivered++
	}
	return delivered
}

// SendErrorMessage sends an error frame to a peer
func (m *Manager) SendErrorMessage(peer *Peer, code string, message string) error {
	return peer.Send(models.WSErrorMessage{
		Type:    constants.EventError,
		Code:    code,
		Message: message,
	})
}

// SendCategorizedError sends an error frame whose detail depends on severity
func (m *Manager) SendCategorizedError(peer *Peer, err error, code string, severity constants.ErrorSeverity) error {
	_, actorID := peer.Identity()
	// Always log detailed error server-side
	logger.Error("WebSocket operation failed",
		logger.String("peer_id", peer.ID),
		logger.String("actor_id", actorID),
		logger.String("error_code", code),
		logger.String("severity", severityString(severity)),
		logger.Err(err))

	switch severity {
	case constants.ErrorSeverityClient:
		return m.SendErrorMessage(peer, code, err.Error())
	case constants.ErrorSeveritySecurity:
		logger.Warn("Security-related error occurred",
			logger.String("peer_id", peer.ID),
			logger.String("error_code", code))
		return m.SendErrorMessage(peer, code, "Access denied")
	default:
		return m.SendErrorMessage(peer, code, "Operation failed")
	}
}

func severityString(severity constants.ErrorSeverity) string {
	switch severity {
	case constants.ErrorSeverityClient:
		return "client"
	case constants.ErrorSeverityServer:
		return "server"
	case constants.ErrorSeveritySecurity:
		return "security"
	default:
		return "unknown"
	}
}

// IsNormalClose reports whether err is the peer going away on purpose
func IsNormalClose(err error) bool {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return true
	}
	return errors.Is(err, websocket.ErrCloseSent)
}
