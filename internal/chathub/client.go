package chathub

import "chatrelay/backend/internal/models"

// Client is the interface for one connected session, whatever transport
// carries it. It abstracts the underlying connection so the hub can manage
// different client types uniformly (websocket in production, test doubles in
// tests).
//
// The room, nickname and recovery accessors are only touched from the hub's
// run loop; implementations do not need to synchronize them.
type Client interface {
	// GetSessionID returns the opaque id assigned at connect time.
	GetSessionID() string

	// GetRoom returns the name of the room the session has joined, or ""
	// before any successful join.
	GetRoom() string
	SetRoom(string)

	GetNickname() string
	SetNickname(string)

	// GetLastOffset returns the highest message id the client reported in
	// its connect handshake. Replay starts just above it.
	GetLastOffset() uint

	// IsRecovered reports whether this connection's catch-up replay has
	// already run. MarkRecovered is called once, after a successful replay.
	IsRecovered() bool
	MarkRecovered()

	// GetSendChannel returns the channel the hub delivers outbound events
	// on. It is a send-only channel from the hub's point of view.
	GetSendChannel() chan<- models.ServerEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's connection and channels.
	Close()
}
