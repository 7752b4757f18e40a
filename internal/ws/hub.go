package ws

import (
	"context"
	"time"

	"github.com/PriyaG26/Chat-app/internal/logger"
	"github.com/PriyaG26/Chat-app/internal/presence"
)

// LastSeenStore persists the moment a user's final connection went away.
// Implemented by repository.UserRepository.
type LastSeenStore interface {
	UpdateLastSeen(ctx context.Context, userID string, t time.Time) error
}

// Hub owns the presence registry's lifecycle: it serializes connect and
// disconnect events, broadcasts the online-id snapshot on every change, and
// records last-seen when a user's last connection drops.
type Hub struct {
	reg        *presence.Registry
	users      LastSeenStore
	maxConns   int
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub(reg *presence.Registry, users LastSeenStore, maxConns int) *Hub {
	if maxConns <= 0 {
		maxConns = 10000
	}
	return &Hub{
		reg:        reg,
		users:      users,
		maxConns:   maxConns,
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
	}
}

// Run serializes all connect/disconnect handling until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) shutdown() {
	all := h.reg.All()
	for _, handle := range all {
		if c, ok := handle.(*Client); ok {
			h.reg.Unregister(c)
			c.Close()
		}
	}
	for _, handle := range all {
		if c, ok := handle.(*Client); ok {
			c.Wait()
		}
	}
}

func (h *Hub) addClient(c *Client) {
	if h.reg.Len() >= h.maxConns {
		logger.Errorf("ws connection limit reached (%d), rejecting user=%s", h.maxConns, c.userID)
		c.Close()
		return
	}
	h.reg.Register(c)
	h.broadcastOnline()
}

func (h *Hub) removeClient(c *Client) {
	last := h.reg.Unregister(c)
	c.Close()
	if !last {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.users.UpdateLastSeen(ctx, c.userID, time.Now().UTC()); err != nil {
		logger.Errorf("ws update last seen user=%s: %v", c.userID, err)
	}
	h.broadcastOnline()
}

// broadcastOnline pushes the current online-id snapshot to every connection.
func (h *Hub) broadcastOnline() {
	ids := h.reg.OnlineIDs()
	for _, handle := range h.reg.All() {
		handle.Deliver(EventOnlineUsers, ids)
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.Close()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
