package ws

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dungeon-legends-server/config"
	"dungeon-legends-server/game"
	"dungeon-legends-server/wsutil"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development; restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RegistryInterface defines what the Hub needs from the match registry.
type RegistryInterface interface {
	Get(matchID string) (*game.Match, bool)
	Resume(ctx context.Context, matchID string) (*game.Match, error)
}

// Hub maintains the set of active connections and the room membership index.
// It implements game.Publisher: match goroutines hand it payloads and it fans
// them out to every connection in the match's room, in order.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Registry   RegistryInterface
	Config     *config.Config

	// roomsMu guards rooms; Publish and join/leave run on different goroutines.
	roomsMu sync.Mutex
	rooms   map[string]map[*Client]bool
}

// NewHub creates a new Hub. Registry is assigned after construction because
// the registry needs the hub as its publisher.
func NewHub(cfg *config.Config) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Config:     cfg,
		rooms:      make(map[string]map[*Client]bool),
	}
}

// Publish sends a payload to every connection in the match's room. Slow or
// dead connections drop the message rather than block the match goroutine.
func (h *Hub) Publish(matchID string, payload []byte) {
	h.roomsMu.Lock()
	members := make([]*Client, 0, len(h.rooms[matchID]))
	for c := range h.rooms[matchID] {
		members = append(members, c)
	}
	h.roomsMu.Unlock()
	for _, c := range members {
		wsutil.SafeSend(c.Send, payload)
	}
}

func (h *Hub) joinRoom(matchID string, c *Client) {
	h.roomsMu.Lock()
	defer h.roomsMu.Unlock()
	if h.rooms[matchID] == nil {
		h.rooms[matchID] = make(map[*Client]bool)
	}
	h.rooms[matchID][c] = true
}

func (h *Hub) leaveRoom(matchID string, c *Client) {
	h.roomsMu.Lock()
	defer h.roomsMu.Unlock()
	if members, ok := h.rooms[matchID]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, matchID)
		}
	}
}

// Run starts the hub's main loop. Should be run as a goroutine. When ctx is
// cancelled (e.g. on server shutdown), Run returns and no longer accepts new
// registrations. Connections idle past IdleTimeoutSec are reaped.
func (h *Hub) Run(ctx context.Context) {
	reapInterval := 30 * time.Second
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("hub: shutdown signal received, stopping", "tag", "ws")
			return
		case client := <-h.Register:
			h.Clients[client] = true
			slog.Info("client connected", "tag", "ws", "total", len(h.Clients))

		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
				slog.Info("client disconnected", "tag", "ws", "total", len(h.Clients))

				// The match is never paused for an absent participant; the
				// room just learns the seat went quiet.
				if client.MatchID != "" {
					h.leaveRoom(client.MatchID, client)
					h.broadcastLeft(client)
				}
			}

		case <-ticker.C:
			h.reapIdle()
		}
	}
}

// reapIdle closes connections that have not been seen for IdleTimeoutSec.
// Closing the socket makes the read pump fail and unregister normally.
func (h *Hub) reapIdle() {
	limit := time.Duration(h.Config.IdleTimeoutSec) * time.Second
	if limit <= 0 {
		return
	}
	now := time.Now()
	for c := range h.Clients {
		last := time.Unix(c.lastSeen.Load(), 0)
		if now.Sub(last) > limit {
			slog.Info("reaping idle connection", "tag", "ws", "user", c.UserID, "idle", now.Sub(last))
			c.Conn.Close()
		}
	}
}

func (h *Hub) broadcastLeft(c *Client) {
	msg := PlayerLeftMsg{Type: "playerLeft", ParticipantID: c.ParticipantID, Name: c.Name}
	if payload, err := marshal(msg); err == nil {
		h.Publish(c.MatchID, payload)
	}
}

// ServeWS handles WebSocket upgrade requests and creates a new Client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade error", "tag", "ws", "err", err)
		return
	}

	client := &Client{
		Hub:  h,
		Conn: conn,
		Send: make(chan []byte, 256),
	}
	client.lastSeen.Store(time.Now().Unix())

	h.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
