// Package ws adapts websocket connections onto the chat core: it upgrades
// HTTP requests, assigns connection identities, and translates wire frames
// into session calls.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/parleyhq/parley/internal/chat"
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Hub *chat.Hub
	cfg *config.Config
}

func NewController(hub *chat.Hub, cfg *config.Config) *Controller {
	return &Controller{Hub: hub, cfg: cfg}
}

// wsConn implements chat.Conn over a gorilla connection. Sends go through
// a buffered channel drained by the write pump; a full buffer drops the
// frame rather than blocking the broadcaster.
type wsConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- b:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleChat upgrades the request and runs the connection until it drops.
// Each upgrade gets a fresh connection identity; the session starts with no
// room membership.
func (ctl *Controller) HandleChat(ctx context.Context, c *gin.Context) {
	socket, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Msg("ws upgrade")
		return
	}
	socket.SetReadLimit(ctl.cfg.ReadLimit)

	id := domain.ConnID(uuid.NewString())
	conn := &wsConn{
		conn: socket,
		send: make(chan []byte, ctl.cfg.SendBuffer),
	}
	sess := ctl.Hub.Connect(id, conn)
	log.Info().Str("module", "adapters.ws").Str("conn", string(id)).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sess, conn)
}
