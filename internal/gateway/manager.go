package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// SessionResolver maps a session token to its user and session ids.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (userID int64, sessionID string, err error)
}

type connSet map[*Connection]struct{}

// Manager manages all active WebSocket connections and event routing.
// A user may hold several connections at once, one per client session.
type Manager struct {
	mu          sync.RWMutex
	connections map[int64]connSet  // userID → connections
	sessions    map[string]connSet // sessionID → connections

	resolver SessionResolver
	log      *slog.Logger
}

// NewManager creates a new gateway Manager.
func NewManager(resolver SessionResolver, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		connections: make(map[int64]connSet),
		sessions:    make(map[string]connSet),
		resolver:    resolver,
		log:         logger.With("component", "gateway"),
	}
}

// SetResolver replaces the session resolver. It must be called before the
// manager starts serving connections.
func (m *Manager) SetResolver(resolver SessionResolver) {
	m.resolver = resolver
}

// register adds an identified connection to the manager.
func (m *Manager) register(c *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connections[c.UserID] == nil {
		m.connections[c.UserID] = make(connSet)
	}
	m.connections[c.UserID][c] = struct{}{}

	if m.sessions[c.SessionID] == nil {
		m.sessions[c.SessionID] = make(connSet)
	}
	m.sessions[c.SessionID][c] = struct{}{}
}

// unregister removes a connection from the manager.
func (m *Manager) unregister(c *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if set, ok := m.connections[c.UserID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(m.connections, c.UserID)
		}
	}
	if set, ok := m.sessions[c.SessionID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(m.sessions, c.SessionID)
		}
	}
}

// ConnectionCount returns the number of identified connections of a user.
func (m *Manager) ConnectionCount(userID int64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections[userID])
}

// DispatchToUser sends a dispatch event to every connection of a user.
func (m *Manager) DispatchToUser(userID int64, event string, data any) {
	m.DispatchToUsers([]int64{userID}, event, data)
}

// DispatchToUsers sends a dispatch event to every connection of each user.
// Repeated ids receive the event once.
func (m *Manager) DispatchToUsers(userIDs []int64, event string, data any) {
	seen := make(map[int64]bool, len(userIDs))
	var conns []*Connection

	m.mu.RLock()
	for _, id := range userIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		for c := range m.connections[id] {
			conns = append(conns, c)
		}
	}
	m.mu.RUnlock()

	for _, c := range conns {
		c.SendEvent(event, data)
	}
}

// DisconnectUser closes every connection of a user.
func (m *Manager) DisconnectUser(userID int64) {
	m.mu.RLock()
	conns := make([]*Connection, 0, len(m.connections[userID]))
	for c := range m.connections[userID] {
		conns = append(conns, c)
	}
	m.mu.RUnlock()

	for _, c := range conns {
		c.Kick(GatewayPayload{Op: OpInvalid})
	}
}

// DisconnectSession closes the connections opened with one session token.
func (m *Manager) DisconnectSession(sessionID string) {
	m.mu.RLock()
	conns := make([]*Connection, 0, len(m.sessions[sessionID]))
	for c := range m.sessions[sessionID] {
		conns = append(conns, c)
	}
	m.mu.RUnlock()

	for _, c := range conns {
		c.Kick(GatewayPayload{Op: OpInvalid})
	}
}

// handleIdentify processes an IDENTIFY payload from a client.
func (m *Manager) handleIdentify(c *Connection, data json.RawMessage) {
	if c.identified.Load() {
		return
	}

	var identify IdentifyData
	if err := json.Unmarshal(data, &identify); err != nil {
		m.log.Warn("invalid identify data", "error", err)
		c.Kick(GatewayPayload{Op: OpInvalid})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userID, sessionID, err := m.resolver.ResolveSession(ctx, identify.Token)
	if err != nil {
		m.log.Warn("invalid token in identify", "error", err)
		c.Kick(GatewayPayload{Op: OpInvalid})
		return
	}

	c.UserID = userID
	c.SessionID = sessionID
	c.identified.Store(true)
	m.register(c)

	// The session may have been revoked, and its connections kicked,
	// between the lookup and register.
	if _, _, err := m.resolver.ResolveSession(ctx, identify.Token); err != nil {
		m.log.Debug("session revoked during identify", "userID", userID, "connectionID", c.ID)
		m.unregister(c)
		c.Kick(GatewayPayload{Op: OpInvalid})
		return
	}

	m.log.Debug("connection identified", "userID", userID, "connectionID", c.ID)

	c.SendEvent(EventReady, ReadyData{
		ConnectionID: c.ID,
		UserID:       userID,
	})
}
