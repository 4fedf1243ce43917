package models

import (
	"encoding/json"
	"errors"
)

// Client→server event kinds. The set is closed: anything else coming off the
// wire is rejected at the boundary before it reaches the hub.
const (
	EventJoinRoom    = "join room"
	EventChatMessage = "chat message"
	EventTyping      = "typing"
	EventStopTyping  = "stop typing"
)

// Server→client event kinds.
const (
	EventJoinError        = "join error"
	EventOnlineUsers      = "Online users"
	EventUserConnected    = "user connected"
	EventUserDisconnected = "user disconnected"
	EventUserTyping       = "user typing"
	EventUserStopTyping   = "user stop typing"
)

// DefaultNickname is used when a session has no user-supplied nickname.
const DefaultNickname = "Anonymous"

var ErrUnknownEvent = errors.New("unknown event kind")

// ClientEvent is the decoded form of an inbound websocket frame.
type ClientEvent struct {
	Event        string `json:"event"`
	Nickname     string `json:"nickname,omitempty"`
	Room         string `json:"room,omitempty"`
	Password     string `json:"password,omitempty"`
	Content      string `json:"content,omitempty"`
	ClientOffset string `json:"client_offset,omitempty"`
}

// ParseClientEvent decodes a raw frame and checks the event kind against the
// closed set. Field-level validation (empty room, missing password) is the
// hub's job; this only guards the envelope.
func ParseClientEvent(data []byte) (ClientEvent, error) {
	var ev ClientEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ClientEvent{}, err
	}
	switch ev.Event {
	case EventJoinRoom, EventChatMessage, EventTyping, EventStopTyping:
		return ev, nil
	default:
		return ClientEvent{}, ErrUnknownEvent
	}
}

// ServerEvent is an outbound frame. One struct covers every kind; unused
// fields are omitted on the wire.
type ServerEvent struct {
	Event    string   `json:"event"`
	Reason   string   `json:"reason,omitempty"`
	Content  string   `json:"content,omitempty"`
	ID       uint     `json:"id,omitempty"`
	Nickname string   `json:"nickname,omitempty"`
	Users    []string `json:"users,omitempty"`
}

// NewChatEvent builds the broadcast frame for a stored message.
func NewChatEvent(msg ChatMessage) ServerEvent {
	return ServerEvent{
		Event:    EventChatMessage,
		Content:  msg.Content,
		ID:       msg.ID,
		Nickname: msg.Nickname,
	}
}
