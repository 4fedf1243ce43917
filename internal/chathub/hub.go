// Package chathub coordinates room membership, presence, message fan-out and
// reconnection replay for the chat relay. All shared state is owned by a
// single run loop: every inbound event, store call included, is handled to
// completion before the next one, so a join-and-announce or persist-and-
// broadcast sequence is atomic as far as clients can observe.
package chathub

import (
	"github.com/rs/zerolog"

	"chatrelay/backend/internal/models"
	"chatrelay/backend/internal/storage"
)

// InboundEvent is one decoded client frame together with the session it
// arrived on.
type InboundEvent struct {
	SessionID string
	Event     models.ClientEvent
}

// Hub is the session/room coordination core.
type Hub struct {
	// Clients maps session id to the live connection.
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client
	EventCh      chan InboundEvent

	Storage  storage.Storage
	Rooms    *RoomRegistry
	Presence *PresenceTracker

	log zerolog.Logger
}

func NewHub(s storage.Storage, log zerolog.Logger) *Hub {
	return &Hub{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		EventCh:      make(chan InboundEvent),
		Storage:      s,
		Rooms:        NewRoomRegistry(),
		Presence:     NewPresenceTracker(),
		log:          log.With().Str("component", "hub").Logger(),
	}
}

// Run is the hub's event loop. It owns all mutation of the registry and the
// presence tracker; nothing else writes to them while it runs.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.RegisterCh:
			h.handleRegister(c)
		case c := <-h.UnregisterCh:
			h.handleUnregister(c)
		case in := <-h.EventCh:
			h.handleEvent(in)
		}
	}
}

func (h *Hub) handleRegister(c Client) {
	h.Clients[c.GetSessionID()] = c
	h.log.Info().Str("session_id", c.GetSessionID()).Msg("client connected")
}

func (h *Hub) handleUnregister(c Client) {
	id := c.GetSessionID()
	if _, ok := h.Clients[id]; !ok {
		return
	}
	delete(h.Clients, id)
	h.Presence.MarkDisconnected(id)

	if room := c.GetRoom(); room != "" {
		h.Rooms.Leave(room, id)
		h.emit(room, models.ServerEvent{Event: models.EventUserDisconnected, Nickname: c.GetNickname()})
		h.emit(room, models.ServerEvent{Event: models.EventOnlineUsers, Users: h.Presence.OnlineNicknames(room)})
	}
	h.log.Info().Str("session_id", id).Msg("client disconnected")
}

func (h *Hub) handleEvent(in InboundEvent) {
	c, ok := h.Clients[in.SessionID]
	if !ok {
		// Raced with a disconnect; nothing to do.
		return
	}

	switch in.Event.Event {
	case models.EventJoinRoom:
		h.handleJoin(c, in.Event)
	case models.EventChatMessage:
		h.handleChatMessage(c, in.Event)
	case models.EventTyping:
		h.handleTyping(c, models.EventUserTyping)
	case models.EventStopTyping:
		h.handleTyping(c, models.EventUserStopTyping)
	}
}

func (h *Hub) handleJoin(c Client, ev models.ClientEvent) {
	id := c.GetSessionID()

	if ev.Room == "" || ev.Nickname == "" {
		h.emitToOne(c, models.ServerEvent{Event: models.EventJoinError, Reason: ErrMissingRoomOrNickname.Error()})
		return
	}
	if err := h.Rooms.CreateOrJoin(ev.Room, ev.Password, id); err != nil {
		h.emitToOne(c, models.ServerEvent{Event: models.EventJoinError, Reason: err.Error()})
		return
	}

	// A second join moves the session; announce the departure to the old
	// room before re-pointing presence.
	if prev := c.GetRoom(); prev != "" && prev != ev.Room {
		h.Rooms.Leave(prev, id)
		h.Presence.MarkDisconnected(id)
		h.emit(prev, models.ServerEvent{Event: models.EventUserDisconnected, Nickname: c.GetNickname()})
		h.emit(prev, models.ServerEvent{Event: models.EventOnlineUsers, Users: h.Presence.OnlineNicknames(prev)})
	}

	c.SetRoom(ev.Room)
	c.SetNickname(ev.Nickname)
	h.Presence.Set(id, ev.Nickname, ev.Room)

	h.emit(ev.Room, models.ServerEvent{Event: models.EventOnlineUsers, Users: h.Presence.OnlineNicknames(ev.Room)})
	h.emitExcept(ev.Room, id, models.ServerEvent{Event: models.EventUserConnected, Nickname: ev.Nickname})
	h.log.Info().Str("session_id", id).Str("room", ev.Room).Str("nickname", ev.Nickname).Msg("joined room")

	if !c.IsRecovered() {
		h.runRecovery(c)
	}
}

func (h *Hub) handleChatMessage(c Client, ev models.ClientEvent) {
	room := c.GetRoom()
	if room == "" {
		h.log.Debug().Str("session_id", c.GetSessionID()).Msg("chat message before join, ignoring")
		return
	}
	if ev.ClientOffset == "" {
		h.log.Debug().Str("session_id", c.GetSessionID()).Msg("chat message without client offset, ignoring")
		return
	}

	msg := &models.ChatMessage{
		Room:         room,
		ClientOffset: ev.ClientOffset,
		Content:      ev.Content,
		Nickname:     c.GetNickname(),
	}
	inserted, err := h.Storage.AppendMessage(msg)
	if err != nil {
		// Message is dropped; the sender gets no feedback.
		h.log.Error().Err(err).Str("room", room).Msg("dropping message, store append failed")
		return
	}
	if !inserted {
		// Retried send: the original broadcast stands, do not repeat it.
		h.log.Debug().Str("client_offset", ev.ClientOffset).Msg("duplicate send suppressed")
		return
	}

	h.emit(room, models.NewChatEvent(*msg))
}

func (h *Hub) handleTyping(c Client, kind string) {
	room := c.GetRoom()
	if room == "" {
		return
	}
	h.emitExcept(room, c.GetSessionID(), models.ServerEvent{Event: kind, Nickname: c.GetNickname()})
}

// runRecovery replays the messages the client missed while away: everything
// in its room with an id above the handshake offset, in ascending order, sent
// to this session only. It runs at most once per connection, after the first
// successful join.
func (h *Hub) runRecovery(c Client) {
	room := c.GetRoom()
	msgs, err := h.Storage.MessagesSince(room, c.GetLastOffset())
	if err != nil {
		// Left unrecovered: a later join on this connection retries.
		h.log.Error().Err(err).Str("room", room).Msg("replay query failed")
		return
	}
	for _, m := range msgs {
		h.emitToOne(c, models.NewChatEvent(m))
	}
	c.MarkRecovered()
	h.log.Info().
		Str("session_id", c.GetSessionID()).
		Str("room", room).
		Uint("since", c.GetLastOffset()).
		Int("replayed", len(msgs)).
		Msg("recovery complete")
}

// emit delivers the event to every connected member of the room.
func (h *Hub) emit(room string, ev models.ServerEvent) {
	for _, id := range h.Rooms.Members(room) {
		if c, ok := h.Clients[id]; ok {
			h.send(c, ev)
		}
	}
}

// emitExcept delivers to every member of the room but one, so the originator
// of an ephemeral event does not see its own notification.
func (h *Hub) emitExcept(room, exclude string, ev models.ServerEvent) {
	for _, id := range h.Rooms.Members(room) {
		if id == exclude {
			continue
		}
		if c, ok := h.Clients[id]; ok {
			h.send(c, ev)
		}
	}
}

// emitToOne delivers to a single session. Used for join errors and replay.
func (h *Hub) emitToOne(c Client, ev models.ServerEvent) {
	h.send(c, ev)
}

// send is best-effort: a client whose buffer is full misses the event. Chat
// messages are persisted before broadcast, so such a client catches up
// through replay on its next reconnect.
func (h *Hub) send(c Client, ev models.ServerEvent) {
	select {
	case c.GetSendChannel() <- ev:
	default:
		h.log.Warn().Str("session_id", c.GetSessionID()).Str("event", ev.Event).Msg("send buffer full, event skipped")
	}
}
