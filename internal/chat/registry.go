// Package chat is the room-presence and broadcast core: it tracks which
// connection belongs to which occupant and room, resolves name collisions,
// and fans events out to the right subset of connections.
package chat

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/parleyhq/parley/internal/domain"
)

type occupantEntry struct {
	occ *domain.Occupant
	seq uint64 // registration order, for deterministic rosters
}

// Registry is the threadsafe in-memory occupant table. It exclusively owns
// the occupant set; room membership is derived from it, never stored twice.
type Registry struct {
	mu     sync.RWMutex
	byConn map[domain.ConnID]*occupantEntry
	byRoom map[domain.RoomName]map[domain.ConnID]struct{}
	seq    uint64
}

func NewRegistry() *Registry {
	return &Registry{
		byConn: make(map[domain.ConnID]*occupantEntry),
		byRoom: make(map[domain.RoomName]map[domain.ConnID]struct{}),
	}
}

// Register inserts an occupant for id, replacing any stale entry for the
// same connection. The display name is resolved against the live room under
// the same lock as the insert, so two concurrent joins can never end up with
// the same resolved name in one room.
func (r *Registry) Register(id domain.ConnID, name string, room domain.RoomName) domain.Occupant {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(id)

	taken := make(map[string]struct{}, len(r.byRoom[room]))
	for cid := range r.byRoom[room] {
		taken[r.byConn[cid].occ.Name] = struct{}{}
	}
	resolved := ResolveName(taken, name)

	r.seq++
	occ := &domain.Occupant{ID: id, Name: resolved, Room: room}
	r.byConn[id] = &occupantEntry{occ: occ, seq: r.seq}
	members, ok := r.byRoom[room]
	if !ok {
		members = make(map[domain.ConnID]struct{})
		r.byRoom[room] = members
	}
	members[id] = struct{}{}

	log.Info().Str("module", "chat.registry").Str("conn", string(id)).
		Str("name", resolved).Str("room", string(room)).Msg("occupant registered")
	return *occ
}

// Remove deletes and returns the occupant for id. The second return is
// false when the connection had no active membership, which is a normal
// outcome (disconnect before join, double disconnect), not a fault.
func (r *Registry) Remove(id domain.ConnID) (domain.Occupant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	occ, ok := r.removeLocked(id)
	if ok {
		log.Info().Str("module", "chat.registry").Str("conn", string(id)).
			Str("room", string(occ.Room)).Msg("occupant removed")
	}
	return occ, ok
}

func (r *Registry) removeLocked(id domain.ConnID) (domain.Occupant, bool) {
	entry, ok := r.byConn[id]
	if !ok {
		return domain.Occupant{}, false
	}
	delete(r.byConn, id)
	if members, ok := r.byRoom[entry.occ.Room]; ok {
		delete(members, id)
		if len(members) == 0 {
			delete(r.byRoom, entry.occ.Room)
		}
	}
	return *entry.occ, true
}

// Lookup is a read-only fetch by connection identity.
func (r *Registry) Lookup(id domain.ConnID) (domain.Occupant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.byConn[id]
	if !ok {
		return domain.Occupant{}, false
	}
	return *entry.occ, true
}

// Roster returns the display names of all occupants of room, in
// registration order.
func (r *Registry) Roster(room domain.RoomName) []string {
	entries := r.roomEntries(room)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.occ.Name)
	}
	return names
}

// Members returns the connection ids of all occupants of room, in
// registration order. Fan-out targeting uses this.
func (r *Registry) Members(room domain.RoomName) []domain.ConnID {
	entries := r.roomEntries(room)
	ids := make([]domain.ConnID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.occ.ID)
	}
	return ids
}

func (r *Registry) roomEntries(room domain.RoomName) []*occupantEntry {
	r.mu.RLock()
	entries := make([]*occupantEntry, 0, len(r.byRoom[room]))
	for cid := range r.byRoom[room] {
		entries = append(entries, r.byConn[cid])
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	return entries
}

// RoomInfo is a read-only view for APIs.
type RoomInfo struct {
	Name      domain.RoomName `json:"name"`
	Occupants int             `json:"occupants"`
}

func (r *Registry) Rooms() []RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoomInfo, 0, len(r.byRoom))
	for name, members := range r.byRoom {
		out = append(out, RoomInfo{Name: name, Occupants: len(members)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
