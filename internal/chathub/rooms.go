package chathub

import (
	"errors"
	"sync"
)

// Join rejection reasons. The strings go to the offending client verbatim in
// a "join error" event.
var (
	ErrMissingRoomOrNickname = errors.New("Room and nickname are required!")
	ErrPasswordRequired      = errors.New("You must set a password to create a new room!")
	ErrIncorrectPassword     = errors.New("Incorrect password for this room!")
)

type room struct {
	// password is set by the first joiner and never changes afterwards.
	password string
	members  map[string]struct{}
}

// RoomRegistry maps room names to their password and current member set.
// Rooms are created lazily on first join and live for the process lifetime.
//
// The hub's run loop is the only writer, but handlers and tests may read
// concurrently, hence the RWMutex.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[string]*room)}
}

// CreateOrJoin admits sessionID into the named room, creating the room when
// it does not exist yet. A new room requires a non-empty password; an
// existing room requires an exact password match.
func (r *RoomRegistry) CreateOrJoin(name, password, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[name]
	if !ok {
		if password == "" {
			return ErrPasswordRequired
		}
		rm = &room{password: password, members: make(map[string]struct{})}
		r.rooms[name] = rm
	} else if rm.password != password {
		return ErrIncorrectPassword
	}

	rm.members[sessionID] = struct{}{}
	return nil
}

// Leave removes sessionID from the room's member set. The room itself is
// kept, password included, so it stays joinable.
func (r *RoomRegistry) Leave(name, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rm, ok := r.rooms[name]; ok {
		delete(rm.members, sessionID)
	}
}

// Members returns a snapshot of the session ids currently joined to the room.
func (r *RoomRegistry) Members(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[name]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(rm.members))
	for id := range rm.members {
		ids = append(ids, id)
	}
	return ids
}

// Exists reports whether the room has been created.
func (r *RoomRegistry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[name]
	return ok
}
