package domain

import (
	"strconv"
	"time"

	"github.com/fathima-sithara/jungbot/internal/rankcache"
)

// StoredMessage is the persisted form of a counted group message.
type StoredMessage struct {
	ID        string    `bson:"_id" json:"id"`
	ChatID    int64     `bson:"chat_id" json:"chat_id"`
	ChatTitle string    `bson:"chat_title" json:"chat_title"`
	ChatType  string    `bson:"chat_type" json:"chat_type"`
	UserID    int64     `bson:"user_id" json:"user_id"`
	Username  string    `bson:"username" json:"username"`
	FirstName string    `bson:"first_name" json:"first_name"`
	LastName  string    `bson:"last_name" json:"last_name"`
	Date      int64     `bson:"date" json:"date"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// NewStoredMessage builds the document for m. The id is derived from the
// chat and Telegram message id so webhook retries upsert the same row.
func NewStoredMessage(m *Message) *StoredMessage {
	s := &StoredMessage{
		Date:      m.Date,
		CreatedAt: time.Unix(m.Date, 0).UTC(),
	}
	if m.Chat != nil {
		s.ChatID = m.Chat.ID
		s.ChatTitle = m.Chat.Title
		s.ChatType = m.Chat.Type
	}
	if m.From != nil {
		s.UserID = m.From.ID
		s.Username = m.From.Username
		s.FirstName = m.From.FirstName
		s.LastName = m.From.LastName
	}
	s.ID = MessageKey(s.ChatID, m.MessageID)
	return s
}

func (s *StoredMessage) Event() rankcache.Event {
	return rankcache.Event{
		GroupID: s.ChatID,
		UserID:  s.UserID,
		User: &rankcache.UserDetails{
			Username:  s.Username,
			FirstName: s.FirstName,
			LastName:  s.LastName,
		},
		Group: &rankcache.GroupDetails{
			Title: s.ChatTitle,
			Type:  s.ChatType,
		},
		Timestamp: s.Date,
	}
}

func MessageKey(chatID, messageID int64) string {
	return strconv.FormatInt(chatID, 10) + ":" + strconv.FormatInt(messageID, 10)
}
