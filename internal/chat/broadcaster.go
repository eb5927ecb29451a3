package chat

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/parleyhq/parley/internal/domain"
)

// Conn is the transport send endpoint bound to one connection.
// TrySend must not block; the adapter owns the underlying resource and is
// the one that closes it.
type Conn interface {
	TrySend(v any) error
}

// Broadcaster fans events out to the connections currently registered in a
// room. Delivery is fire-and-forget: a failed send is skipped, never
// retried, and never blocks delivery to the rest of the room. Dead
// connections are the transport's problem; it reports them as disconnects.
type Broadcaster struct {
	reg *Registry

	mu    sync.RWMutex
	conns map[domain.ConnID]Conn
}

func NewBroadcaster(reg *Registry) *Broadcaster {
	return &Broadcaster{
		reg:   reg,
		conns: make(map[domain.ConnID]Conn),
	}
}

// Bind associates a transport endpoint with a connection identity. Happens
// on connect, before any room membership exists.
func (b *Broadcaster) Bind(id domain.ConnID, conn Conn) {
	b.mu.Lock()
	b.conns[id] = conn
	b.mu.Unlock()
}

func (b *Broadcaster) Unbind(id domain.ConnID) {
	b.mu.Lock()
	delete(b.conns, id)
	b.mu.Unlock()
}

// ToRoom delivers v to every connection currently registered in room.
func (b *Broadcaster) ToRoom(room domain.RoomName, v any) {
	for _, id := range b.reg.Members(room) {
		b.send(id, v)
	}
}

// ToRoomExcept delivers v to every connection in room other than sender,
// so a joiner does not receive their own join announcement.
func (b *Broadcaster) ToRoomExcept(room domain.RoomName, sender domain.ConnID, v any) {
	for _, id := range b.reg.Members(room) {
		if id == sender {
			continue
		}
		b.send(id, v)
	}
}

// ToConn unicasts v to one connection.
func (b *Broadcaster) ToConn(id domain.ConnID, v any) {
	b.send(id, v)
}

func (b *Broadcaster) send(id domain.ConnID, v any) {
	b.mu.RLock()
	conn, ok := b.conns[id]
	b.mu.RUnlock()
	if !ok {
		return
	}
	if err := conn.TrySend(v); err != nil {
		log.Debug().Err(err).Str("module", "chat.broadcaster").
			Str("conn", string(id)).Msg("send skipped")
	}
}
