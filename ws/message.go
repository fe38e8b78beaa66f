package ws

import "encoding/json"

// InboundEnvelope is the generic envelope for all client-to-server messages.
// The Type field is used for routing; Raw holds the full JSON payload.
type InboundEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements custom unmarshaling to capture the raw payload.
func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	// Unmarshal just the type field
	type typeOnly struct {
		Type string `json:"type"`
	}
	var t typeOnly
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	e.Type = t.Type
	e.Raw = json.RawMessage(data)
	return nil
}

// --- Client-to-Server message payloads ---

// AuthenticateMsg is sent once per connection, before joinGame or gameAction,
// with a short-lived token from the identity service.
type AuthenticateMsg struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// JoinGameMsg associates the connection with a match room. ParticipantID is
// optional; when empty the participant is resolved by the authenticated user.
type JoinGameMsg struct {
	Type          string `json:"type"`
	GameID        string `json:"gameId"`
	ParticipantID string `json:"participantId,omitempty"`
}

// GameActionData carries the kind-specific fields of a game action. Pointers
// distinguish an omitted index from an explicit zero.
type GameActionData struct {
	CardIndex   *int `json:"cardIndex,omitempty"`
	TargetIndex *int `json:"targetIndex,omitempty"`
	ChoiceIndex *int `json:"choiceIndex,omitempty"`
}

// GameActionMsg is sent by the client to act in its match.
type GameActionMsg struct {
	Type   string         `json:"type"`
	Action string         `json:"action"`
	Data   GameActionData `json:"data"`
	GameID string         `json:"gameId,omitempty"`
	UserID string         `json:"userId,omitempty"`
}

// ChatMsg is sent by the client to talk to its match room.
type ChatMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// PingMsg is sent by the client periodically to keep the connection alive.
type PingMsg struct {
	Type string `json:"type"`
}

// --- Server-to-Client messages ---

// ErrorMsg is sent when a client message is invalid. Sent to the offending
// connection only, never broadcast.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// AuthenticatedMsg confirms a successful authenticate.
type AuthenticatedMsg struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// PongMsg answers a ping.
type PongMsg struct {
	Type string `json:"type"`
}

// PlayerJoinedMsg is broadcast to a room when a connection joins it.
type PlayerJoinedMsg struct {
	Type          string `json:"type"`
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
}

// PlayerLeftMsg is broadcast to a room when a connection leaves it. The match
// itself keeps running; absent participants time out and auto-pass.
type PlayerLeftMsg struct {
	Type          string `json:"type"`
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
}

// ChatBroadcastMsg relays a chat message to the whole room.
type ChatBroadcastMsg struct {
	Type          string `json:"type"`
	ParticipantID string `json:"participantId"`
	From          string `json:"from"`
	Message       string `json:"message"`
}
