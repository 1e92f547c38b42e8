package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fathima-sithara/jungbot/internal/archive"
	"github.com/fathima-sithara/jungbot/internal/cache"
	"github.com/fathima-sithara/jungbot/internal/command"
	"github.com/fathima-sithara/jungbot/internal/domain"
	"github.com/fathima-sithara/jungbot/internal/metrics"
	"github.com/fathima-sithara/jungbot/internal/rankcache"
	"github.com/fathima-sithara/jungbot/internal/utils"
	"github.com/fathima-sithara/jungbot/internal/workday"
	"go.uber.org/zap"
)

type MessageStore interface {
	SaveMessage(ctx context.Context, m *domain.StoredMessage) (bool, error)
	StreamSince(ctx context.Context, from time.Time, fn func(*domain.StoredMessage) error) (int, error)
}

type Settings interface {
	AllJungEnabled(ctx context.Context, chatID int64) (bool, error)
	SetAllJung(ctx context.Context, chatID int64, enabled bool) error
	SetOffTime(ctx context.Context, chatID int64, slot string, days workday.Mask) error
	ChatsOffAt(ctx context.Context, slot string, day time.Weekday) ([]int64, error)
}

type Cooldown interface {
	Acquire(ctx context.Context, chatID int64) (cache.Decision, time.Duration, error)
}

type Publisher interface {
	Publish(ctx context.Context, job domain.Job) error
}

type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	IsAdmin(ctx context.Context, chatID, userID int64) (bool, error)
}

type Archiver interface {
	Put(ctx context.Context, s archive.Snapshot) (string, error)
}

type Deps struct {
	Store     MessageStore
	Settings  Settings
	Cooldown  Cooldown
	Publisher Publisher
	Messenger Messenger
	Archiver  Archiver // nil disables archiving
}

type Options struct {
	Window   time.Duration
	TopLimit int
	Now      func() time.Time
}

// Bot owns the ranking cache. Every cache call goes through mu.
type Bot struct {
	mu    sync.Mutex
	cache *rankcache.Cache

	deps Deps
	opts Options
	log  *zap.Logger
}

func NewBot(deps Deps, opts Options, log *zap.Logger) *Bot {
	if opts.Window <= 0 {
		opts.Window = 7 * 24 * time.Hour
	}
	if opts.TopLimit <= 0 {
		opts.TopLimit = 10
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Bot{cache: rankcache.New(), deps: deps, opts: opts, log: log}
}

// HandleUpdate ingests one webhook update and returns the HTTP status to
// answer Telegram with.
func (b *Bot) HandleUpdate(ctx context.Context, u domain.Update) (int, error) {
	m := u.Message
	if m == nil || !m.IsGroup() {
		metrics.UpdatesReceived.WithLabelValues("ignored").Inc()
		return http.StatusNoContent, nil
	}

	inserted, err := b.deps.Store.SaveMessage(ctx, domain.NewStoredMessage(m))
	if err != nil {
		metrics.UpdatesReceived.WithLabelValues("failed").Inc()
		b.log.Error("persist message failed", zap.Int64("chat_id", m.Chat.ID), zap.Error(err))
		return http.StatusInternalServerError, fmt.Errorf("%w: %v", utils.ErrStoreFailure, err)
	}
	if !inserted {
		// redelivery of an update already counted
		metrics.UpdatesReceived.WithLabelValues("duplicate").Inc()
		return http.StatusOK, nil
	}

	b.mu.Lock()
	ok := b.cache.AddMessage(m.Event())
	b.mu.Unlock()
	if !ok {
		metrics.InvalidEvents.Inc()
		b.log.Warn("message rejected by cache", zap.Int64("chat_id", m.Chat.ID), zap.Int64("message_id", m.MessageID))
	} else {
		metrics.UpdatesReceived.WithLabelValues("counted").Inc()
	}

	if m.IsBotCommand() {
		b.dispatchCommands(ctx, m)
	}
	return http.StatusOK, nil
}

// dispatchCommands publishes a job per command in m. A failed publish is
// logged and dropped: the message is already stored and counted.
func (b *Bot) dispatchCommands(ctx context.Context, m *domain.Message) {
	for _, a := range command.Parse(m.Text) {
		job := domain.NewJob(a.Kind, m.Chat.ID)
		job.ChatTitle = m.Chat.Title
		if m.From != nil {
			job.UserID = m.From.ID
		}
		job.OffTime = a.OffTime
		job.Workday = a.Workday

		if err := b.deps.Publisher.Publish(ctx, job); err != nil {
			b.log.Error("publish job failed",
				zap.String("action", string(job.Action)),
				zap.Int64("chat_id", job.ChatID),
				zap.Error(err))
			continue
		}
		metrics.JobsPublished.WithLabelValues(string(job.Action)).Inc()
		b.log.Info("job published", zap.String("job_id", job.ID), zap.String("action", string(job.Action)), zap.Int64("chat_id", job.ChatID))
	}
}

// Ranking ranks chatID over [from, to].
func (b *Bot) Ranking(chatID int64, from, to time.Time) (rankcache.Ranking, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cache.RankBetween(chatID, from, to)
}

// WindowRanking ranks chatID over the configured window ending now.
func (b *Bot) WindowRanking(chatID int64) (rankcache.Ranking, error) {
	now := b.opts.Now()
	return b.Ranking(chatID, now.Add(-b.opts.Window), now)
}

type GroupSummary struct {
	ID      int64                  `json:"id"`
	Details rankcache.GroupDetails `json:"details"`
	Users   int                    `json:"users"`
}

type Overview struct {
	Stats  rankcache.Stats `json:"stats"`
	Groups []GroupSummary  `json:"groups"`
}

func (b *Bot) Overview() Overview {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := b.cache.GroupIDs()
	out := Overview{Stats: b.cache.Stats(), Groups: make([]GroupSummary, 0, len(ids))}
	for _, id := range ids {
		g, _ := b.cache.Group(id)
		out.Groups = append(out.Groups, GroupSummary{ID: id, Details: g.Details, Users: g.Len()})
	}
	return out
}

func (b *Bot) chatTitle(chatID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if g, ok := b.cache.Group(chatID); ok {
		return g.Details.Title
	}
	return ""
}
