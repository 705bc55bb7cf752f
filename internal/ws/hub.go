package ws

import (
	"sync"

	"github.com/google/uuid"
)

// Conn is the write side of a client connection. *websocket.Conn
// satisfies it; tests substitute a fake.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Client is one live connection bound to an authenticated user. Writes
// are serialized so concurrent dispatches to the same client are safe.
type Client struct {
	id     string
	userID int64

	mu   sync.Mutex
	conn Conn
}

func NewClient(userID int64, conn Conn) *Client {
	return &Client{
		id:     uuid.NewString(),
		userID: userID,
		conn:   conn,
	}
}

func (c *Client) UserID() int64 { return c.userID }

// Send writes one event to the connection.
func (c *Client) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Hub is the presence registry: at most one live client per user. It is
// the only state shared across connection handlers.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]*Client)}
}

// Register installs or replaces the mapping for the user and returns the
// superseded client, if any, so the caller can close it.
func (h *Hub) Register(userID int64, c *Client) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev := h.clients[userID]
	h.clients[userID] = c
	return prev
}

// Lookup returns the user's live client, if any.
func (h *Hub) Lookup(userID int64) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[userID]
	return c, ok
}

// Unregister removes the mapping only if it still points at c, so a
// stale disconnect cannot clobber a newer connection for the same user.
func (h *Hub) Unregister(userID int64, c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	cur, ok := h.clients[userID]
	if !ok || cur.id != c.id {
		return false
	}
	delete(h.clients, userID)
	return true
}
