package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/fathima-sithara/jungbot/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func NewRedis(ctx context.Context, cfg *config.Config, log *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	return rdb, nil
}

type keys struct{ prefix string }

func (k keys) chat(kind string, chatID int64) string {
	return k.prefix + ":" + kind + ":" + strconv.FormatInt(chatID, 10)
}

func (k keys) settings(chatID int64) string { return k.chat("settings", chatID) }
func (k keys) cooldown(chatID int64) string { return k.chat("cooldown", chatID) }
func (k keys) notified(chatID int64) string { return k.chat("notified", chatID) }
func (k keys) offTime(slot string) string   { return k.prefix + ":offtime:" + slot }
