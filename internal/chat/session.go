package chat

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parleyhq/parley/internal/domain"
	"github.com/parleyhq/parley/internal/validate"
)

var (
	ErrNameRoomRequired = errors.New("name and room name are required")
	ErrSessionClosed    = errors.New("session is closed")
)

type SessionState int

const (
	StateConnected SessionState = iota
	StateJoined
	StateClosed
)

// Hub owns the registry and broadcaster shared by every session. The
// transport adapter calls Connect once per accepted connection.
type Hub struct {
	reg   *Registry
	bc    *Broadcaster
	clock Clock
}

// NewHub builds a hub around a fresh registry. clock may be nil, in which
// case time.Now is used.
func NewHub(clock Clock) *Hub {
	if clock == nil {
		clock = time.Now
	}
	reg := NewRegistry()
	return &Hub{
		reg:   reg,
		bc:    NewBroadcaster(reg),
		clock: clock,
	}
}

func (h *Hub) Registry() *Registry { return h.reg }

func (h *Hub) Rooms() []RoomInfo { return h.reg.Rooms() }

// Connect binds conn under id and returns the session in its Connected
// state. No room membership exists until Join succeeds.
func (h *Hub) Connect(id domain.ConnID, conn Conn) *Session {
	h.bc.Bind(id, conn)
	log.Info().Str("module", "chat.session").Str("conn", string(id)).Msg("connected")
	return &Session{id: id, hub: h}
}

// Session is the per-connection lifecycle state machine:
// Connected → Joined → Closed. The transport serializes events per
// connection; the mutex keeps the state transitions explicit regardless.
type Session struct {
	id  domain.ConnID
	hub *Hub

	mu    sync.Mutex
	state SessionState
}

func (s *Session) ID() domain.ConnID { return s.id }

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Join moves the session into a room. Any stale membership for this
// connection is replaced, the display name is resolved against the room's
// live roster, and three events go out: the updated roster to the whole
// room, a welcome unicast to the joiner, and a join announcement to
// everyone else. A validation failure mutates nothing and broadcasts
// nothing.
func (s *Session) Join(name, room string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return ErrSessionClosed
	}
	if !validate.IsRealString(name) || !validate.IsRealString(room) {
		return ErrNameRoomRequired
	}
	trimmed := strings.TrimSpace(name)
	roomName := domain.NormalizeRoom(room)
	if _, err := domain.NewOccupant(s.id, trimmed, roomName); err != nil {
		return err
	}

	occ := s.hub.reg.Register(s.id, trimmed, roomName)
	s.state = StateJoined

	s.hub.bc.ToRoom(roomName, NewRoster(s.hub.reg.Roster(roomName)))
	s.hub.bc.ToConn(s.id, NewMessage(AdminName, WelcomeText, s.hub.clock()))
	s.hub.bc.ToRoomExcept(roomName, s.id, NewMessage(AdminName, occ.Name+" has joined.", s.hub.clock()))

	log.Info().Str("module", "chat.session").Str("conn", string(s.id)).
		Str("name", occ.Name).Str("room", string(roomName)).Msg("joined")
	return nil
}

// CreateMessage fans a text message out to the sender's whole room,
// sender included. An unregistered sender or empty text is a silent no-op;
// the adapter still acknowledges the frame.
func (s *Session) CreateMessage(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateJoined {
		return
	}
	occ, ok := s.hub.reg.Lookup(s.id)
	if !ok || !validate.IsRealString(text) {
		log.Debug().Str("module", "chat.session").Str("conn", string(s.id)).Msg("message dropped")
		return
	}
	s.hub.bc.ToRoom(occ.Room, NewMessage(occ.Name, text, s.hub.clock()))
}

// CreateLocationMessage fans the sender's coordinates out to the room as a
// maps link. Same drop semantics as CreateMessage.
func (s *Session) CreateLocationMessage(lat, lng float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateJoined {
		return
	}
	occ, ok := s.hub.reg.Lookup(s.id)
	if !ok {
		log.Debug().Str("module", "chat.session").Str("conn", string(s.id)).Msg("location dropped")
		return
	}
	s.hub.bc.ToRoom(occ.Room, NewLocationMessage(occ.Name, lat, lng, s.hub.clock()))
}

// Disconnect is terminal and idempotent. When the connection had an active
// membership the room gets the updated roster and a leave announcement;
// otherwise nothing is broadcast.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return
	}
	s.state = StateClosed

	occ, ok := s.hub.reg.Remove(s.id)
	s.hub.bc.Unbind(s.id)
	if !ok {
		return
	}
	s.hub.bc.ToRoom(occ.Room, NewRoster(s.hub.reg.Roster(occ.Room)))
	s.hub.bc.ToRoom(occ.Room, NewMessage(AdminName, occ.Name+" has left.", s.hub.clock()))
	log.Info().Str("module", "chat.session").Str("conn", string(s.id)).
		Str("room", string(occ.Room)).Msg("disconnected")
}
