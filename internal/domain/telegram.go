package domain

import (
	"strings"

	"github.com/fathima-sithara/jungbot/internal/rankcache"
)

// Update is the webhook payload sent by the Telegram Bot API.
type Update struct {
	UpdateID      int64    `json:"update_id"`
	Message       *Message `json:"message,omitempty"`
	EditedMessage *Message `json:"edited_message,omitempty"`
}

type Chat struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"` // private, group, supergroup or channel
	Title     string `json:"title,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

func (u *User) Details() rankcache.UserDetails {
	return rankcache.UserDetails{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func (u *User) FullName() string { return u.Details().DisplayName() }

type MessageEntity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

type Message struct {
	MessageID int64           `json:"message_id"`
	From      *User           `json:"from,omitempty"`
	Chat      *Chat           `json:"chat,omitempty"`
	Date      int64           `json:"date"`
	Text      string          `json:"text,omitempty"`
	Entities  []MessageEntity `json:"entities,omitempty"`
}

// IsGroup is true for groups and supergroups.
func (m *Message) IsGroup() bool {
	return m.Chat != nil && strings.Contains(m.Chat.Type, "group")
}

func (m *Message) IsBotCommand() bool {
	return len(m.Entities) > 0 && m.Entities[0].Type == "bot_command"
}

// Event maps the message onto the ranking cache's input. Missing parts stay
// zero so the cache can reject the event.
func (m *Message) Event() rankcache.Event {
	ev := rankcache.Event{Timestamp: m.Date}
	if m.Chat != nil {
		ev.GroupID = m.Chat.ID
		ev.Group = &rankcache.GroupDetails{
			Title:    m.Chat.Title,
			Type:     m.Chat.Type,
			Username: m.Chat.Username,
		}
	}
	if m.From != nil {
		ev.UserID = m.From.ID
		d := m.From.Details()
		ev.User = &d
	}
	return ev
}
