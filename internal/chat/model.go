package chat

import (
	"encoding/json"
	"time"
)

// ---------------------------------------------
// 🔌 Wire events
// ---------------------------------------------

const (
	EventJoinRoom    = "join_room"
	EventJoinSuccess = "join_success"
	EventJoinError   = "join_error"
	EventUserJoined  = "user_joined"
	EventSendMessage = "send_message"
	EventNewMessage  = "new_message"
	EventLeaveRoom   = "leave_room"
	EventUserLeft    = "user_left"
	EventUpdateUsers = "update_users"
)

// TimeLayout is how every outbound timestamp is rendered (local time).
const TimeLayout = "2006-01-02 15:04:05"

func formatTime(t time.Time) string {
	return t.Local().Format(TimeLayout)
}

// Frame is one WebSocket text message in either direction.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ---------------------------------------------
// 📥 Inbound payloads
// ---------------------------------------------

type JoinRequest struct {
	Nickname string `json:"nickname"`
}

// InboundMessage is what a client sends with send_message. Newer clients
// resolve @commands themselves and send Type+Content; older ones only send
// Message.
type InboundMessage struct {
	Type    string `json:"type,omitempty"`
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
}

// ---------------------------------------------
// 📤 Outbound payloads
// ---------------------------------------------

type Notice struct {
	Message string `json:"message"`
}

type Presence struct {
	Nickname  string `json:"nickname"`
	Timestamp string `json:"timestamp"`
}

type Roster struct {
	Users []string `json:"users"`
}

// Envelope is a classified chat message ready for fan-out. It is never stored.
type Envelope struct {
	Nickname  string      `json:"nickname"`
	Content   string      `json:"content"`
	Type      MessageKind `json:"type"`
	Timestamp string      `json:"timestamp"`
}

// ---------------------------------------------
// ⚡ Internal hub models
// ---------------------------------------------

type Audience int

const (
	ToRoom Audience = iota
	ToSender
)

// Delivery is one event the room wants sent, addressed to the handles in To.
type Delivery struct {
	Audience Audience
	To       []string
	Event    string
	Payload  any
}

func (d Delivery) Encode() ([]byte, error) {
	data, err := json.Marshal(d.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: d.Event, Data: data})
}

// Inbound is a decoded frame together with the client that sent it.
type Inbound struct {
	Client *Client
	Frame  Frame
}
