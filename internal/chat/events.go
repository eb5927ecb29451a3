package chat

import (
	"fmt"
	"time"
)

// Event type tags, as the client protocol names them.
const (
	EventUserList        = "updateUserList"
	EventMessage         = "newMessage"
	EventLocationMessage = "newLocationMessage"
)

// System messages are attributed to Admin.
const (
	AdminName   = "Admin"
	WelcomeText = "Welcome to the chat app"
)

// Clock supplies message timestamps. Injected so tests can pin time.
type Clock func() time.Time

type RosterEvent struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

type MessageEvent struct {
	Type      string `json:"type"`
	From      string `json:"from"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

type LocationMessageEvent struct {
	Type      string `json:"type"`
	From      string `json:"from"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"createdAt"`
}

func NewRoster(users []string) RosterEvent {
	return RosterEvent{Type: EventUserList, Users: users}
}

// NewMessage builds a text message event. CreatedAt is epoch milliseconds,
// which is what the client formatters expect.
func NewMessage(from, text string, at time.Time) MessageEvent {
	return MessageEvent{
		Type:      EventMessage,
		From:      from,
		Text:      text,
		CreatedAt: at.UnixMilli(),
	}
}

func NewLocationMessage(from string, lat, lng float64, at time.Time) LocationMessageEvent {
	return LocationMessageEvent{
		Type:      EventLocationMessage,
		From:      from,
		URL:       fmt.Sprintf("https://www.google.com/maps?q=%v,%v", lat, lng),
		CreatedAt: at.UnixMilli(),
	}
}
