package chathub

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"chatrelay/backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// WebSocketClient implements the Client interface over gorilla/websocket.
type WebSocketClient struct {
	sessionID  string
	roomName   string
	nickname   string
	lastOffset uint
	recovered  bool

	Conn *websocket.Conn
	Hub  *Hub
	Send chan models.ServerEvent

	log zerolog.Logger
}

// NewWebSocketClient wraps an upgraded connection. lastOffset comes from the
// handshake and drives the replay window once the client joins a room.
func NewWebSocketClient(hub *Hub, conn *websocket.Conn, sessionID string, lastOffset uint, log zerolog.Logger) *WebSocketClient {
	return &WebSocketClient{
		sessionID:  sessionID,
		nickname:   models.DefaultNickname,
		lastOffset: lastOffset,
		Conn:       conn,
		Hub:        hub,
		Send:       make(chan models.ServerEvent, 256),
		log:        log.With().Str("component", "ws").Str("session_id", sessionID).Logger(),
	}
}

func (c *WebSocketClient) GetSessionID() string                          { return c.sessionID }
func (c *WebSocketClient) GetRoom() string                               { return c.roomName }
func (c *WebSocketClient) SetRoom(name string)                           { c.roomName = name }
func (c *WebSocketClient) GetNickname() string                           { return c.nickname }
func (c *WebSocketClient) SetNickname(n string)                          { c.nickname = n }
func (c *WebSocketClient) GetLastOffset() uint                           { return c.lastOffset }
func (c *WebSocketClient) IsRecovered() bool                             { return c.recovered }
func (c *WebSocketClient) MarkRecovered()                                { c.recovered = true }
func (c *WebSocketClient) GetSendChannel() chan<- models.ServerEvent     { return c.Send }

// Run starts the pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the Send channel, which stops the write pump and closes the
// connection; the read pump then exits on its own.
func (c *WebSocketClient) Close() {
	close(c.Send)
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("read error")
			}
			break
		}

		ev, err := models.ParseClientEvent(data)
		if err != nil {
			if errors.Is(err, models.ErrUnknownEvent) {
				c.log.Debug().Msg("dropping frame with unknown event kind")
			} else {
				c.log.Debug().Err(err).Msg("dropping malformed frame")
			}
			continue
		}

		c.Hub.EventCh <- InboundEvent{SessionID: c.sessionID, Event: ev}
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(ev)
			if err != nil {
				c.log.Error().Err(err).Msg("failed to encode event")
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
