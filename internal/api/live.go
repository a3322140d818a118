package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"fleetops/internal/domain"
	"fleetops/internal/hub"
	"fleetops/internal/pipeline"
	"fleetops/internal/service/fleet"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin enforcement happens in the CORS middleware in front of the
	// router, not here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsSender adapts a gorilla connection to the hub's outbound contract.
// The hub guarantees a single Send caller, so only Close needs the mutex.
type wsSender struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSender) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *wsSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Live upgrades the request to a WebSocket and registers the connection
// under the caller's tenant and role-derived groups. Dispatchers and
// managers receive the dispatch feed; drivers receive the driver feed plus
// a per-driver group, and may push location updates over the socket.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	principal, ok := domain.PrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	conn := hub.NewConn(
		uuid.NewString(),
		principal.TenantID,
		principal.Name,
		liveGroups(principal),
		&wsSender{conn: ws},
		h.sendBuffer,
	)
	h.registry.Register(conn)
	h.logger.Info("live connection opened",
		"conn", conn.ID(), "tenant", principal.TenantID, "principal", principal.Name)

	go h.pingLoop(ws, conn)
	h.readLoop(r, ws, conn, principal)
}

// liveGroups derives the hub groups a principal subscribes to.
func liveGroups(p domain.ContextPrincipal) []string {
	var groups []string
	if p.HasRole(domain.RoleDispatcher) || p.HasRole(domain.RoleManager) {
		groups = append(groups, domain.GroupDispatchers)
	}
	if p.HasRole(domain.RoleDriver) {
		groups = append(groups, domain.GroupDrivers, domain.DriverGroup(p.Name))
	}
	return groups
}

// readLoop drains inbound frames until the peer goes away, then tears the
// connection down. Location frames from drivers are dispatched through the
// regular pipeline so validation and authorization still apply.
func (h *Handler) readLoop(r *http.Request, ws *websocket.Conn, conn *hub.Conn, principal domain.ContextPrincipal) {
	defer func() {
		h.registry.Drop(conn)
		h.logger.Info("live connection closed", "conn", conn.ID(), "tenant", principal.TenantID)
	}()

	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	ws.SetReadLimit(4096)

	for {
		var frame struct {
			Type string                           `json:"type"`
			Data fleet.UpdateTruckLocationCommand `json:"data"`
		}
		if err := ws.ReadJSON(&frame); err != nil {
			return
		}
		if frame.Type != domain.EventLocationUpdated {
			continue
		}
		cmd := frame.Data
		cmd.DriverID = principal.Name
		res := pipeline.Run(r.Context(), h.pipeline, cmd, h.fleet.UpdateTruckLocation)
		if !res.Success {
			h.logger.Debug("live location update rejected",
				"conn", conn.ID(), "error", res.Error)
		}
	}
}

func (h *Handler) pingLoop(ws *websocket.Conn, conn *hub.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for range ticker.C {
		if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
			h.registry.Drop(conn)
			return
		}
	}
}
