package websocket

import "sync"

// Hub tracks live connections per user. A user may hold several
// connections (multiple tabs, devices); a push to a user fans out to
// every one of them.
type Hub struct {
	mu sync.RWMutex

	// connections maps userID to the set of that user's clients.
	connections map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]map[*Client]struct{}),
	}
}

// Register adds the connection. Takes effect immediately so a push right
// after the handshake reaches the new client.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.connections[client.UserID]
	if set == nil {
		set = make(map[*Client]struct{})
		h.connections[client.UserID] = set
	}
	set[client] = struct{}{}
}

// Unregister drops the connection and closes its Send channel so the
// write loop exits. Returns true if it was the user's last connection,
// which the caller uses to drive the presence offline write.
func (h *Hub) Unregister(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.connections[client.UserID]
	if set == nil {
		return false
	}
	if _, ok := set[client]; !ok {
		return false
	}
	delete(set, client)
	close(client.Send)
	if len(set) == 0 {
		delete(h.connections, client.UserID)
		return true
	}
	return false
}

// PushToUser sends payload to every live connection of userID. Unknown
// users are a no-op; delivery to each connection is non-blocking.
func (h *Hub) PushToUser(userID string, payload []byte) {
	h.mu.RLock()
	for client := range h.connections[userID] {
		client.SendMessage(payload)
	}
	h.mu.RUnlock()
}

// IsUserConnected reports whether userID has at least one live connection.
func (h *Hub) IsUserConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID]) > 0
}

// ConnectionCount returns the total number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.connections {
		n += len(set)
	}
	return n
}
