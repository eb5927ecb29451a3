package ws

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/parleyhq/parley/internal/chat"
)

// Wire error text kept verbatim from the client protocol.
const errNameRoomRequired = "Name and room name are required."

type ackReply struct {
	Type string `json:"type"`
}

type errorReply struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func (ctl *Controller) handleFrame(sess *chat.Session, c *wsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Msg("bad json")
		return
	}

	switch env.Type {
	case "join":
		ctl.handleJoin(sess, c, data)
	case "createMessage":
		ctl.handleCreateMessage(sess, c, data)
	case "createLocationMessage":
		ctl.handleCreateLocationMessage(sess, c, data)
	case "ping":
		ctl.send(c, ackReply{Type: "pong"})
	default:
		log.Warn().Str("module", "adapters.ws").Str("type", env.Type).Msg("unknown frame")
	}
}

// handleJoin maps the session's synchronous result back onto the wire as
// the join acknowledgment: an error frame on rejection, a bare joined
// frame on success. Roster and welcome events arrive separately through
// the broadcaster.
func (ctl *Controller) handleJoin(sess *chat.Session, c *wsConn, data []byte) {
	var p struct {
		Type string `json:"type"`
		Name string `json:"name"`
		Room string `json:"room"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Msg("bad join payload")
		ctl.send(c, errorReply{Type: "error", Error: "bad_payload"})
		return
	}

	if err := sess.Join(p.Name, p.Room); err != nil {
		msg := err.Error()
		if errors.Is(err, chat.ErrNameRoomRequired) {
			msg = errNameRoomRequired
		}
		ctl.send(c, errorReply{Type: "error", Error: msg})
		return
	}
	ctl.send(c, ackReply{Type: "joined"})
}

func (ctl *Controller) handleCreateMessage(sess *chat.Session, c *wsConn, data []byte) {
	var p struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Msg("bad message payload")
		ctl.send(c, errorReply{Type: "error", Error: "bad_payload"})
		return
	}

	// Invalid or out-of-room messages are dropped inside the session;
	// the frame is acknowledged either way.
	sess.CreateMessage(p.Text)
	ctl.send(c, ackReply{Type: "ack"})
}

func (ctl *Controller) handleCreateLocationMessage(sess *chat.Session, c *wsConn, data []byte) {
	var p struct {
		Type      string  `json:"type"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Msg("bad location payload")
		ctl.send(c, errorReply{Type: "error", Error: "bad_payload"})
		return
	}

	sess.CreateLocationMessage(p.Latitude, p.Longitude)
	ctl.send(c, ackReply{Type: "ack"})
}

func (ctl *Controller) send(c *wsConn, v any) {
	if err := c.TrySend(v); err != nil {
		log.Debug().Err(err).Str("module", "adapters.ws").Msg("reply dropped")
	}
}
