package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Decision int

const (
	Allowed Decision = iota
	// DeniedNotify is returned once per cooldown window; the caller tells
	// the chat when commands reopen.
	DeniedNotify
	DeniedSilent
)

// Cooldown rate limits report commands per chat.
type Cooldown struct {
	rdb  *redis.Client
	keys keys
	ttl  time.Duration
}

func NewCooldown(rdb *redis.Client, prefix string, ttl time.Duration) *Cooldown {
	return &Cooldown{rdb: rdb, keys: keys{prefix: prefix}, ttl: ttl}
}

// Acquire opens a cooldown window for chatID if none is running. When one
// is, retryIn is the time left in it.
func (c *Cooldown) Acquire(ctx context.Context, chatID int64) (d Decision, retryIn time.Duration, err error) {
	ok, err := c.rdb.SetNX(ctx, c.keys.cooldown(chatID), 1, c.ttl).Result()
	if err != nil {
		return DeniedSilent, 0, err
	}
	if ok {
		if err := c.rdb.Del(ctx, c.keys.notified(chatID)).Err(); err != nil {
			return Allowed, 0, err
		}
		return Allowed, 0, nil
	}

	retryIn, err = c.rdb.PTTL(ctx, c.keys.cooldown(chatID)).Result()
	if err != nil {
		return DeniedSilent, 0, err
	}
	if retryIn <= 0 {
		retryIn = c.ttl
	}

	first, err := c.rdb.SetNX(ctx, c.keys.notified(chatID), 1, retryIn).Result()
	if err != nil {
		return DeniedSilent, retryIn, err
	}
	if first {
		return DeniedNotify, retryIn, nil
	}
	return DeniedSilent, retryIn, nil
}
