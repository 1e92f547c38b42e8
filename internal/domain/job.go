package domain

import (
	"time"

	"github.com/google/uuid"
)

type Action string

const (
	ActionTopTen       Action = "topten"
	ActionTopDiver     Action = "topdiver"
	ActionAllJung      Action = "alljung"
	ActionJungHelp     Action = "junghelp"
	ActionOffFromWork  Action = "offFromWork"
	ActionEnableAll    Action = "enableAllJung"
	ActionDisableAll   Action = "disableAllJung"
	ActionSetOffTime   Action = "setOffFromWorkTimeUTC"
	ActionBadOffFormat Action = "setOffFromWorkTimeUTCIncorrectFormat"
)

// Job is one unit of deferred work travelling through the queue.
type Job struct {
	ID        string    `json:"id"`
	Action    Action    `json:"action"`
	ChatID    int64     `json:"chat_id"`
	ChatTitle string    `json:"chat_title,omitempty"`
	UserID    int64     `json:"user_id,omitempty"`
	OffTime   string    `json:"off_time,omitempty"`
	Workday   string    `json:"workday,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewJob(action Action, chatID int64) Job {
	return Job{
		ID:        uuid.NewString(),
		Action:    action,
		ChatID:    chatID,
		CreatedAt: time.Now().UTC(),
	}
}
