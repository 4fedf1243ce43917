package chathub

import "sync"

type presenceEntry struct {
	nickname  string
	room      string
	connected bool
}

// PresenceTracker records which nickname each session carries, which room it
// sits in and whether it is still connected. Entries are kept after
// disconnect so that online lists reflect departures; a reconnecting client
// arrives under a fresh session id and simply orphans the old entry.
//
// Iteration order is first-insertion order. Go maps iterate in random order,
// so an explicit order slice keeps OnlineNicknames deterministic within one
// process run.
type PresenceTracker struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*presenceEntry
}

func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{entries: make(map[string]*presenceEntry)}
}

// Set upserts the session's presence and marks it connected.
func (p *PresenceTracker) Set(sessionID, nickname, room string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.entries[sessionID]; ok {
		e.nickname = nickname
		e.room = room
		e.connected = true
		return
	}
	p.entries[sessionID] = &presenceEntry{nickname: nickname, room: room, connected: true}
	p.order = append(p.order, sessionID)
}

// MarkDisconnected flips the connected flag; no-op for unknown sessions.
func (p *PresenceTracker) MarkDisconnected(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.entries[sessionID]; ok {
		e.connected = false
	}
}

// OnlineNicknames lists the nicknames of connected sessions in the room,
// in insertion order.
func (p *PresenceTracker) OnlineNicknames(room string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var names []string
	for _, id := range p.order {
		if e := p.entries[id]; e.connected && e.room == room {
			names = append(names, e.nickname)
		}
	}
	return names
}
