package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"dungeon-legends-server/auth"
	"dungeon-legends-server/game"
	"dungeon-legends-server/gameerrors"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Upper bound for routing one action through a match goroutine.
	applyTimeout = 5 * time.Second
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte

	Authenticated bool
	UserID        string
	Name          string

	MatchID       string
	ParticipantID string

	// lastSeen is a unix timestamp, read by the hub's idle reaper.
	lastSeen atomic.Int64
}

// ReadPump pumps messages from the websocket connection to the hub.
// It runs in its own goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		c.lastSeen.Store(time.Now().Unix())
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read error", "tag", "ws", "err", err)
			}
			break
		}
		c.lastSeen.Store(time.Now().Unix())

		c.handleMessage(message)
	}
}

// WritePump pumps messages from the send channel to the websocket connection.
// It runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.sendError("Invalid message format.")
		return
	}

	switch envelope.Type {
	case "authenticate":
		c.handleAuthenticate(envelope.Raw)
	case "joinGame":
		c.handleJoinGame(envelope.Raw)
	case "gameAction":
		c.handleGameAction(envelope.Raw)
	case "chatMessage":
		c.handleChat(envelope.Raw)
	case "ping":
		c.sendJSON(PongMsg{Type: "pong"})
	default:
		c.sendError("Unknown message type: " + envelope.Type)
	}
}

func (c *Client) handleAuthenticate(raw json.RawMessage) {
	var msg AuthenticateMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid authenticate message.")
		return
	}

	claims, err := auth.ValidateToken(c.Hub.Config.AuthBaseURL, msg.Token)
	if err != nil {
		slog.Warn("authentication failed", "tag", "ws", "err", err)
		c.sendError("Authentication failed.")
		return
	}
	userID := auth.UserIDFromClaims(claims)
	if userID == "" {
		c.sendError("Token carries no user id.")
		return
	}

	c.Authenticated = true
	c.UserID = userID
	c.Name = auth.DisplayNameFromClaims(claims)
	c.sendJSON(AuthenticatedMsg{Type: "authenticated", UserID: c.UserID, Name: c.Name})
}

func (c *Client) handleJoinGame(raw json.RawMessage) {
	if err := c.authorize(false); err != nil {
		c.sendError(err.Error())
		return
	}

	var msg JoinGameMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid joinGame message.")
		return
	}

	m, ok := c.Hub.Registry.Get(msg.GameID)
	if !ok {
		c.sendError("Match not found: " + msg.GameID)
		return
	}

	participant := resolveParticipant(m, msg.ParticipantID, c.UserID)
	if participant == nil {
		c.sendError("You are not a participant of this match.")
		return
	}

	// Rejoining from a new connection replaces the old room membership.
	if c.MatchID != "" && c.MatchID != msg.GameID {
		c.Hub.leaveRoom(c.MatchID, c)
	}
	c.MatchID = msg.GameID
	c.ParticipantID = participant.ID
	c.Hub.joinRoom(msg.GameID, c)

	if payload, err := marshal(PlayerJoinedMsg{Type: "playerJoined", ParticipantID: participant.ID, Name: participant.Name}); err == nil {
		c.Hub.Publish(msg.GameID, payload)
	}

	// Snapshot replay so a joining or reconnecting client catches up.
	ctx, cancel := context.WithTimeout(context.Background(), applyTimeout)
	defer cancel()
	snapshot, err := m.SnapshotSync(ctx)
	if err != nil {
		c.sendError("Could not fetch match state.")
		return
	}
	payload, err := marshal(struct {
		Type      string        `json:"type"`
		GameState game.Snapshot `json:"gameState"`
	}{Type: "gameStateUpdate", GameState: snapshot})
	if err != nil {
		slog.Error("marshaling snapshot replay", "tag", "ws", "err", err)
		return
	}
	c.sendRaw(payload)
}

func (c *Client) handleGameAction(raw json.RawMessage) {
	if err := c.authorize(true); err != nil {
		c.sendError(err.Error())
		return
	}

	var msg GameActionMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid gameAction message.")
		return
	}
	kind, ok := game.ParseActionKind(msg.Action)
	if !ok {
		c.sendError("Unknown action: " + msg.Action)
		return
	}

	m, found := c.Hub.Registry.Get(c.MatchID)
	if !found {
		c.sendError("Match not found: " + c.MatchID)
		return
	}

	action := game.Action{
		Kind:        kind,
		CardIndex:   indexOr(msg.Data.CardIndex, -1),
		TargetIndex: indexOr(msg.Data.TargetIndex, -1),
		ChoiceIndex: indexOr(msg.Data.ChoiceIndex, -1),
	}

	ctx, cancel := context.WithTimeout(context.Background(), applyTimeout)
	defer cancel()
	res, err := m.Apply(ctx, c.ParticipantID, action)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	// Rejected actions go back to the acting connection only; the match
	// broadcasts successful results itself. Rule violations are routine and
	// stay quiet; anything else is worth a log line.
	if res.Err != nil {
		if !gameerrors.IsRuleViolation(res.Err) {
			slog.Warn("game action rejected", "tag", "ws", "match", c.MatchID, "err", res.Err)
		}
		c.sendError(res.Err.Error())
	}
}

func (c *Client) handleChat(raw json.RawMessage) {
	if err := c.authorize(true); err != nil {
		c.sendError(err.Error())
		return
	}

	var msg ChatMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid chatMessage message.")
		return
	}
	if msg.Message == "" {
		return
	}

	payload, err := marshal(ChatBroadcastMsg{
		Type:          "chatMessage",
		ParticipantID: c.ParticipantID,
		From:          c.Name,
		Message:       msg.Message,
	})
	if err != nil {
		return
	}
	c.Hub.Publish(c.MatchID, payload)
}

// authorize gates handlers on connection state. Every message except
// authenticate requires a validated token; acting and chatting also require
// room membership.
func (c *Client) authorize(needMatch bool) error {
	if !c.Authenticated {
		return gameerrors.ErrUnauthenticated
	}
	if needMatch && c.MatchID == "" {
		return gameerrors.ErrNotAuthorizedForMatch
	}
	return nil
}

// resolveParticipant finds the seat this user may occupy: by explicit
// participant id when given, otherwise by the authenticated user id.
func resolveParticipant(m *game.Match, participantID, userID string) *game.Participant {
	for _, p := range m.Participants {
		if participantID != "" {
			if p.ID != participantID {
				continue
			}
			if p.UserID != "" && p.UserID != userID {
				return nil
			}
			return p
		}
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

func (c *Client) sendError(message string) {
	c.sendJSON(ErrorMsg{Type: "error", Message: message})
}

func (c *Client) sendJSON(v any) {
	data, err := marshal(v)
	if err != nil {
		return
	}
	c.sendRaw(data)
}

func (c *Client) sendRaw(data []byte) {
	select {
	case c.Send <- data:
	default:
	}
}

func marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// indexOr distinguishes an omitted index from an explicit zero.
func indexOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
