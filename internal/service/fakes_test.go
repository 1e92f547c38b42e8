package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/fathima-sithara/jungbot/internal/archive"
	"github.com/fathima-sithara/jungbot/internal/cache"
	"github.com/fathima-sithara/jungbot/internal/domain"
	"github.com/fathima-sithara/jungbot/internal/workday"
	"go.uber.org/zap"
)

var fixedNow = time.Unix(1_700_000_000, 0).UTC()

type fakeStore struct {
	mu   sync.Mutex
	docs map[string]*domain.StoredMessage
	err  error
}

func (f *fakeStore) SaveMessage(_ context.Context, m *domain.StoredMessage) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.docs == nil {
		f.docs = map[string]*domain.StoredMessage{}
	}
	if _, ok := f.docs[m.ID]; ok {
		return false, nil
	}
	f.docs[m.ID] = m
	return true, nil
}

func (f *fakeStore) StreamSince(_ context.Context, from time.Time, fn func(*domain.StoredMessage) error) (int, error) {
	f.mu.Lock()
	var rows []*domain.StoredMessage
	for _, d := range f.docs {
		if !d.CreatedAt.Before(from) {
			rows = append(rows, d)
		}
	}
	f.mu.Unlock()
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })
	for i, r := range rows {
		if err := fn(r); err != nil {
			return i, err
		}
	}
	return len(rows), nil
}

type offTime struct {
	slot string
	days workday.Mask
}

type fakeSettings struct {
	allJung map[int64]bool
	off     map[int64]offTime
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{allJung: map[int64]bool{}, off: map[int64]offTime{}}
}

func (f *fakeSettings) AllJungEnabled(_ context.Context, chatID int64) (bool, error) {
	v, ok := f.allJung[chatID]
	return !ok || v, nil
}

func (f *fakeSettings) SetAllJung(_ context.Context, chatID int64, enabled bool) error {
	f.allJung[chatID] = enabled
	return nil
}

func (f *fakeSettings) SetOffTime(_ context.Context, chatID int64, slot string, days workday.Mask) error {
	f.off[chatID] = offTime{slot: slot, days: days}
	return nil
}

func (f *fakeSettings) ChatsOffAt(_ context.Context, slot string, day time.Weekday) ([]int64, error) {
	var out []int64
	for id, o := range f.off {
		if o.slot == slot && o.days.Has(day) {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

type fakeCooldown struct {
	decisions []cache.Decision
	retryIn   time.Duration
	err       error
}

func (f *fakeCooldown) Acquire(context.Context, int64) (cache.Decision, time.Duration, error) {
	if f.err != nil {
		return cache.DeniedSilent, 0, f.err
	}
	if len(f.decisions) == 0 {
		return cache.Allowed, 0, nil
	}
	d := f.decisions[0]
	f.decisions = f.decisions[1:]
	return d, f.retryIn, nil
}

type fakePublisher struct {
	jobs []domain.Job
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, job domain.Job) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

type sent struct {
	chatID int64
	text   string
}

type fakeMessenger struct {
	sent   []sent
	admins map[int64]bool
}

func (f *fakeMessenger) SendMessage(_ context.Context, chatID int64, text string) error {
	f.sent = append(f.sent, sent{chatID: chatID, text: text})
	return nil
}

func (f *fakeMessenger) IsAdmin(_ context.Context, _ int64, userID int64) (bool, error) {
	return f.admins[userID], nil
}

type fakeArchiver struct {
	snaps []archive.Snapshot
	fail  map[int64]bool
}

func (f *fakeArchiver) Put(_ context.Context, s archive.Snapshot) (string, error) {
	if f.fail[s.GroupID] {
		return "", errors.New("upload failed")
	}
	f.snaps = append(f.snaps, s)
	return archive.ObjectKey("reports", s.GroupID, s.To), nil
}

type harness struct {
	bot      *Bot
	store    *fakeStore
	settings *fakeSettings
	cooldown *fakeCooldown
	pub      *fakePublisher
	msgr     *fakeMessenger
	arch     *fakeArchiver
}

func newHarness() *harness {
	h := &harness{
		store:    &fakeStore{},
		settings: newFakeSettings(),
		cooldown: &fakeCooldown{},
		pub:      &fakePublisher{},
		msgr:     &fakeMessenger{admins: map[int64]bool{}},
		arch:     &fakeArchiver{},
	}
	h.bot = NewBot(Deps{
		Store:     h.store,
		Settings:  h.settings,
		Cooldown:  h.cooldown,
		Publisher: h.pub,
		Messenger: h.msgr,
		Archiver:  h.arch,
	}, Options{
		Window:   7 * 24 * time.Hour,
		TopLimit: 10,
		Now:      func() time.Time { return fixedNow },
	}, zap.NewNop())
	return h
}

var nextMessageID int64

func groupMessage(chatID, userID int64, first string, at time.Time, text string) *domain.Message {
	nextMessageID++
	m := &domain.Message{
		MessageID: nextMessageID,
		From:      &domain.User{ID: userID, FirstName: first},
		Chat:      &domain.Chat{ID: chatID, Type: "supergroup", Title: "Office"},
		Date:      at.Unix(),
		Text:      text,
	}
	if len(text) > 0 && text[0] == '/' {
		m.Entities = []domain.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}}
	}
	return m
}
