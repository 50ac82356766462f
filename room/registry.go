package room

import (
	"sync"
)

// Registry is the in-memory directory of rooms. The map is guarded by its
// own lock; per-room state is guarded by each room's lock.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

func (g *Registry) CreateRoom(id string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()

	r := NewRoom(id)
	g.rooms[id] = r
	return r
}

// GetOrCreate returns the room with the given id, creating it first when
// absent. init runs on a newly created room before it becomes visible to
// other callers, so first-joiner setup (session, host, seats) cannot race
// a second join.
func (g *Registry) GetOrCreate(id string, init func(*Room)) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if r, exists := g.rooms[id]; exists {
		return r, false
	}
	r := NewRoom(id)
	if init != nil {
		init(r)
	}
	g.rooms[id] = r
	return r, true
}

func (g *Registry) GetRoom(id string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	r, exists := g.rooms[id]
	return r, exists
}

func (g *Registry) RemoveRoom(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.rooms, id)
}

// AddPlayer appends a player to an existing room; missing rooms are a
// no-op, callers are expected to have created the room first.
func (g *Registry) AddPlayer(roomID string, p *Player) {
	r, exists := g.GetRoom(roomID)
	if !exists {
		return
	}
	r.Lock()
	defer r.Unlock()
	r.AddPlayer(p)
}

// GetRoomByConnection scans all rooms for a player bound to the given
// connection. Linear, which is fine at this system's room counts.
func (g *Registry) GetRoomByConnection(connectionID string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, r := range g.rooms {
		r.Lock()
		found := r.PlayerByConnection(connectionID) != nil
		r.Unlock()
		if found {
			return r, true
		}
	}
	return nil, false
}

// RemovePlayerByConnection drops the player with that connection from
// whichever room holds it.
func (g *Registry) RemovePlayerByConnection(connectionID string) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, r := range g.rooms {
		r.Lock()
		r.RemovePlayerByConnection(connectionID)
		r.Unlock()
	}
}

// OnlinePlayerCount counts connected human players across all rooms,
// computed on demand.
func (g *Registry) OnlinePlayerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	count := 0
	for _, r := range g.rooms {
		r.Lock()
		for _, p := range r.Players {
			if !p.IsBot {
				count++
			}
		}
		r.Unlock()
	}
	return count
}

func (g *Registry) ActiveRoomCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}
