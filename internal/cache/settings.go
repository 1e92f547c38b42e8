package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/fathima-sithara/jungbot/internal/workday"
	"github.com/redis/go-redis/v9"
)

const (
	fieldEnableAllJung = "enable_all_jung"
	fieldOffTime       = "off_time"
	fieldWorkday       = "workday"
)

// SettingsStore keeps per-chat bot settings in a Redis hash and indexes
// chats by their off-from-work slot.
type SettingsStore struct {
	rdb  *redis.Client
	keys keys
}

func NewSettingsStore(rdb *redis.Client, prefix string) *SettingsStore {
	return &SettingsStore{rdb: rdb, keys: keys{prefix: prefix}}
}

// AllJungEnabled defaults to true for chats that never toggled it.
func (s *SettingsStore) AllJungEnabled(ctx context.Context, chatID int64) (bool, error) {
	v, err := s.rdb.HGet(ctx, s.keys.settings(chatID), fieldEnableAllJung).Result()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(v)
}

func (s *SettingsStore) SetAllJung(ctx context.Context, chatID int64, enabled bool) error {
	return s.rdb.HSet(ctx, s.keys.settings(chatID), fieldEnableAllJung, strconv.FormatBool(enabled)).Err()
}

// SetOffTime stores slot (HHMM) and days for chatID and moves the chat to
// the new slot index.
func (s *SettingsStore) SetOffTime(ctx context.Context, chatID int64, slot string, days workday.Mask) error {
	key := s.keys.settings(chatID)
	old, err := s.rdb.HGet(ctx, key, fieldOffTime).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	member := strconv.FormatInt(chatID, 10)
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if old != "" && old != slot {
			p.SRem(ctx, s.keys.offTime(old), member)
		}
		p.HSet(ctx, key, fieldOffTime, slot, fieldWorkday, int(days))
		p.SAdd(ctx, s.keys.offTime(slot), member)
		return nil
	})
	return err
}

// OffTime returns the configured slot and days; ok is false when unset.
func (s *SettingsStore) OffTime(ctx context.Context, chatID int64) (slot string, days workday.Mask, ok bool, err error) {
	vals, err := s.rdb.HMGet(ctx, s.keys.settings(chatID), fieldOffTime, fieldWorkday).Result()
	if err != nil {
		return "", 0, false, err
	}
	slot, _ = vals[0].(string)
	if slot == "" {
		return "", 0, false, nil
	}
	raw, _ := vals[1].(string)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return "", 0, false, err
	}
	return slot, workday.Mask(n), true, nil
}

// ChatsOffAt lists the chats whose off time is slot and whose workdays
// include day.
func (s *SettingsStore) ChatsOffAt(ctx context.Context, slot string, day time.Weekday) ([]int64, error) {
	members, err := s.rdb.SMembers(ctx, s.keys.offTime(slot)).Result()
	if err != nil {
		return nil, err
	}

	out := make([]int64, 0, len(members))
	for _, m := range members {
		chatID, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		_, days, ok, err := s.OffTime(ctx, chatID)
		if err != nil {
			return nil, err
		}
		if ok && days.Has(day) {
			out = append(out, chatID)
		}
	}
	return out, nil
}
