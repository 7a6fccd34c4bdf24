package relay

import (
	"sync"

	"github.com/rs/zerolog"
)

// connState tracks one connection's identity and room memberships.
type connState struct {
	client   *Client
	identity string
	rooms    map[string]struct{}
}

// Registry owns all live connections, their identities, and their room
// memberships. One mutex covers everything; the data is small and every
// hold is short.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*connState          // connection id → state
	rooms map[string]map[string]*Client  // room id → connection id → client
	log   zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		conns: make(map[string]*connState),
		rooms: make(map[string]map[string]*Client),
		log:   logger.With().Str("component", "registry").Logger(),
	}
}

// Attach registers a new connection with no identity and no memberships.
func (r *Registry) Attach(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[c.ID] = &connState{
		client: c,
		rooms:  make(map[string]struct{}),
	}
}

// JoinRoom adds the connection to a room. Idempotent. Returns false if the
// connection is unknown, which happens when a join races a disconnect and
// is not a fault.
func (r *Registry) JoinRoom(connID, roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.conns[connID]
	if !ok {
		r.log.Debug().Str("conn_id", connID).Str("room", roomID).Msg("join for unknown connection")
		return false
	}
	if _, joined := state.rooms[roomID]; joined {
		return true
	}

	state.rooms[roomID] = struct{}{}
	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[string]*Client)
		r.rooms[roomID] = members
	}
	members[connID] = state.client
	return true
}

// AnnounceIdentity sets the connection's identity, overwriting any earlier
// announcement. Returns the previous identity and whether the connection
// is known.
func (r *Registry) AnnounceIdentity(connID, identity string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.conns[connID]
	if !ok {
		r.log.Debug().Str("conn_id", connID).Msg("announce for unknown connection")
		return "", false
	}

	prev := state.identity
	state.identity = identity
	return prev, true
}

// Detach removes the connection from every room and forgets it. Returns
// the identity it carried, if any.
func (r *Registry) Detach(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.conns[connID]
	if !ok {
		return "", false
	}

	for roomID := range state.rooms {
		members := r.rooms[roomID]
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, roomID)
		}
	}
	delete(r.conns, connID)
	return state.identity, true
}

// RoomMembers returns a snapshot of the clients joined to a room.
func (r *Registry) RoomMembers(roomID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[roomID]
	clients := make([]*Client, 0, len(members))
	for _, c := range members {
		clients = append(clients, c)
	}
	return clients
}

// AllClients returns a snapshot of every attached connection.
func (r *Registry) AllClients() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.conns))
	for _, state := range r.conns {
		clients = append(clients, state.client)
	}
	return clients
}

// Len returns the number of attached connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
