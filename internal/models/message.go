package models

// ChatMessage is a persisted chat message. ID is assigned by the database at
// insert time and is the authoritative ordering key for replay: clients report
// the highest ID they have seen and catch up with everything above it.
type ChatMessage struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Room is the name of the room the message was sent to.
	Room string `gorm:"type:text;not null;index" json:"room"`
	// ClientOffset is the client-generated idempotency token. The unique
	// index makes retried sends safe: a second insert with the same offset
	// fails the constraint instead of producing a duplicate row.
	ClientOffset string `gorm:"type:text;uniqueIndex;not null" json:"client_offset"`
	// Content is the message body. The core places no size limit on it.
	Content string `gorm:"type:text;not null" json:"content"`
	// Nickname is the sender's nickname frozen at send time.
	Nickname string `gorm:"type:text;not null" json:"nickname"`
}
