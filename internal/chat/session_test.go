package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/parleyhq/parley/internal/domain"
)

func newTestHub() (*Hub, time.Time) {
	now := time.UnixMilli(1700000000000)
	return NewHub(func() time.Time { return now }), now
}

func TestJoinDeliversWelcomeAndRoster(t *testing.T) {
	hub, now := newTestHub()

	connA := &fakeConn{}
	sessA := hub.Connect("a", connA)

	require.NoError(t, sessA.Join("Alice", "LOBBY"))
	require.Equal(t, StateJoined, sessA.State())
	require.Equal(t, []any{
		NewRoster([]string{"Alice"}),
		NewMessage(AdminName, WelcomeText, now),
	}, connA.sent())
}

func TestSecondJoinAnnouncesToOthersOnly(t *testing.T) {
	hub, now := newTestHub()

	connA, connB := &fakeConn{}, &fakeConn{}
	sessA := hub.Connect("a", connA)
	sessB := hub.Connect("b", connB)

	require.NoError(t, sessA.Join("Alice", "LOBBY"))
	connA.drain()

	require.NoError(t, sessB.Join("Bob", "LOBBY"))

	// A sees the updated roster and the announcement.
	require.Equal(t, []any{
		NewRoster([]string{"Alice", "Bob"}),
		NewMessage(AdminName, "Bob has joined.", now),
	}, connA.sent())

	// B sees the roster and a personal welcome, but not its own announcement.
	require.Equal(t, []any{
		NewRoster([]string{"Alice", "Bob"}),
		NewMessage(AdminName, WelcomeText, now),
	}, connB.sent())
}

func TestJoinRejectsEmptyFields(t *testing.T) {
	hub, _ := newTestHub()

	conn := &fakeConn{}
	sess := hub.Connect("a", conn)

	require.ErrorIs(t, sess.Join("", "LOBBY"), ErrNameRoomRequired)
	require.ErrorIs(t, sess.Join("Alice", ""), ErrNameRoomRequired)
	require.ErrorIs(t, sess.Join("   ", "LOBBY"), ErrNameRoomRequired)
	require.ErrorIs(t, sess.Join("Alice", " \t "), ErrNameRoomRequired)

	// Rejected joins mutate nothing and broadcast nothing.
	require.Equal(t, StateConnected, sess.State())
	require.Empty(t, conn.sent())
	_, ok := hub.Registry().Lookup("a")
	require.False(t, ok)
}

func TestJoinRejectsOverlongName(t *testing.T) {
	hub, _ := newTestHub()
	sess := hub.Connect("a", &fakeConn{})

	long := make([]byte, domain.MaxNameLen+1)
	for i := range long {
		long[i] = 'x'
	}
	require.ErrorIs(t, sess.Join(string(long), "LOBBY"), domain.ErrNameTooLong)
	require.Equal(t, StateConnected, sess.State())
}

func TestJoinRejectsOverlongRoom(t *testing.T) {
	hub, _ := newTestHub()
	conn := &fakeConn{}
	sess := hub.Connect("a", conn)

	long := make([]byte, domain.MaxRoomLen+1)
	for i := range long {
		long[i] = 'r'
	}
	require.ErrorIs(t, sess.Join("Alice", string(long)), domain.ErrRoomTooLong)
	require.Equal(t, StateConnected, sess.State())
	require.Empty(t, conn.sent())
}

func TestJoinNormalizesRoomAndResolvesName(t *testing.T) {
	hub, _ := newTestHub()

	sessA := hub.Connect("a", &fakeConn{})
	sessB := hub.Connect("b", &fakeConn{})

	require.NoError(t, sessA.Join("Alex", "LOBBY"))
	require.NoError(t, sessB.Join("Alex", "lobby"))

	require.Equal(t, []string{"Alex", "Alex#2"}, hub.Registry().Roster("LOBBY"))
	require.Empty(t, hub.Registry().Roster("lobby"))
}

func TestRejoinMovesConnection(t *testing.T) {
	hub, _ := newTestHub()

	conn := &fakeConn{}
	sess := hub.Connect("a", conn)
	require.NoError(t, sess.Join("Alice", "LOBBY"))
	require.NoError(t, sess.Join("Alicia", "OTHER"))

	require.Empty(t, hub.Registry().Roster("LOBBY"))
	require.Equal(t, []string{"Alicia"}, hub.Registry().Roster("OTHER"))

	occ, ok := hub.Registry().Lookup("a")
	require.True(t, ok)
	require.Equal(t, domain.RoomName("OTHER"), occ.Room)
}

func TestCreateMessageFansOutToWholeRoom(t *testing.T) {
	hub, now := newTestHub()

	connA, connB, connO := &fakeConn{}, &fakeConn{}, &fakeConn{}
	sessA := hub.Connect("a", connA)
	sessB := hub.Connect("b", connB)
	sessO := hub.Connect("o", connO)

	require.NoError(t, sessA.Join("Alice", "LOBBY"))
	require.NoError(t, sessB.Join("Bob", "LOBBY"))
	require.NoError(t, sessO.Join("Olga", "OTHER"))
	connA.drain()
	connB.drain()
	connO.drain()

	sessA.CreateMessage("hello room")

	want := NewMessage("Alice", "hello room", now)
	require.Equal(t, []any{want}, connA.sent(), "sender receives own message")
	require.Equal(t, []any{want}, connB.sent())
	require.Empty(t, connO.sent(), "other rooms must not receive the message")
}

func TestCreateMessageDroppedWhenNotJoined(t *testing.T) {
	hub, _ := newTestHub()

	conn := &fakeConn{}
	sess := hub.Connect("a", conn)

	sess.CreateMessage("hello")
	require.Empty(t, conn.sent())
}

func TestCreateMessageDropsEmptyText(t *testing.T) {
	hub, _ := newTestHub()

	conn := &fakeConn{}
	sess := hub.Connect("a", conn)
	require.NoError(t, sess.Join("Alice", "LOBBY"))
	conn.drain()

	sess.CreateMessage("   ")
	require.Empty(t, conn.sent())
}

func TestCreateLocationMessage(t *testing.T) {
	hub, now := newTestHub()

	connA, connB := &fakeConn{}, &fakeConn{}
	sessA := hub.Connect("a", connA)
	sessB := hub.Connect("b", connB)
	require.NoError(t, sessA.Join("Alice", "LOBBY"))
	require.NoError(t, sessB.Join("Bob", "LOBBY"))
	connA.drain()
	connB.drain()

	sessA.CreateLocationMessage(51.5, -0.12)

	want := LocationMessageEvent{
		Type:      EventLocationMessage,
		From:      "Alice",
		URL:       "https://www.google.com/maps?q=51.5,-0.12",
		CreatedAt: now.UnixMilli(),
	}
	require.Equal(t, []any{want}, connB.sent())
	require.Equal(t, []any{want}, connA.sent())
}

func TestDisconnectAnnouncesDeparture(t *testing.T) {
	hub, now := newTestHub()

	connA, connB := &fakeConn{}, &fakeConn{}
	sessA := hub.Connect("a", connA)
	sessB := hub.Connect("b", connB)
	require.NoError(t, sessA.Join("Alice", "LOBBY"))
	require.NoError(t, sessB.Join("Bob", "LOBBY"))
	connA.drain()
	connB.drain()

	sessB.Disconnect()
	require.Equal(t, StateClosed, sessB.State())

	require.Equal(t, []any{
		NewRoster([]string{"Alice"}),
		NewMessage(AdminName, "Bob has left.", now),
	}, connA.sent())
	require.Empty(t, connB.sent())

	_, ok := hub.Registry().Lookup("b")
	require.False(t, ok)
}

func TestDisconnectBeforeJoinIsSilent(t *testing.T) {
	hub, _ := newTestHub()

	connA, connB := &fakeConn{}, &fakeConn{}
	sessA := hub.Connect("a", connA)
	sessB := hub.Connect("b", connB)
	require.NoError(t, sessA.Join("Alice", "LOBBY"))
	connA.drain()

	// B never joined; its disconnect must produce zero broadcasts.
	sessB.Disconnect()
	require.Empty(t, connA.sent())
	require.Empty(t, connB.sent())
}

func TestDisconnectIsIdempotent(t *testing.T) {
	hub, _ := newTestHub()

	connA, connB := &fakeConn{}, &fakeConn{}
	sessA := hub.Connect("a", connA)
	sessB := hub.Connect("b", connB)
	require.NoError(t, sessA.Join("Alice", "LOBBY"))
	require.NoError(t, sessB.Join("Bob", "LOBBY"))
	connA.drain()

	sessB.Disconnect()
	first := len(connA.sent())
	sessB.Disconnect()
	require.Len(t, connA.sent(), first, "second disconnect must not broadcast")
}

func TestJoinAfterCloseFails(t *testing.T) {
	hub, _ := newTestHub()

	sess := hub.Connect("a", &fakeConn{})
	sess.Disconnect()
	require.ErrorIs(t, sess.Join("Alice", "LOBBY"), ErrSessionClosed)
}

func TestHubRoomsReflectPresence(t *testing.T) {
	hub, _ := newTestHub()

	sessA := hub.Connect("a", &fakeConn{})
	sessB := hub.Connect("b", &fakeConn{})
	require.NoError(t, sessA.Join("Alice", "LOBBY"))
	require.NoError(t, sessB.Join("Bob", "lobby"))

	require.Equal(t, []RoomInfo{{Name: "LOBBY", Occupants: 2}}, hub.Rooms())

	sessA.Disconnect()
	sessB.Disconnect()
	require.Empty(t, hub.Rooms())
}
