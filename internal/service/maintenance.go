package service

import (
	"context"
	"time"

	"github.com/fathima-sithara/jungbot/internal/archive"
	"github.com/fathima-sithara/jungbot/internal/domain"
	"github.com/fathima-sithara/jungbot/internal/metrics"
	"github.com/fathima-sithara/jungbot/internal/rankcache"
	"go.uber.org/zap"
)

// OffSlot is the 15 minute off-from-work slot containing t, as UTC HHMM.
func OffSlot(t time.Time) string {
	return t.UTC().Truncate(15 * time.Minute).Format("1504")
}

// WarmUp loads the stored messages of the current window into the cache.
func (b *Bot) WarmUp(ctx context.Context) (int, error) {
	from := b.opts.Now().Add(-b.opts.Window)
	rejected := 0
	n, err := b.deps.Store.StreamSince(ctx, from, func(m *domain.StoredMessage) error {
		b.mu.Lock()
		ok := b.cache.AddMessage(m.Event())
		b.mu.Unlock()
		if !ok {
			rejected++
		}
		return nil
	})

	b.mu.Lock()
	b.cache.Sort()
	stats := b.cache.Stats()
	b.mu.Unlock()
	observe(stats)

	if err != nil {
		return n, err
	}
	b.log.Info("cache warmed up",
		zap.Int("messages", n),
		zap.Int("rejected", rejected),
		zap.Int("groups", stats.Groups),
		zap.Time("from", from))
	return n, nil
}

// Maintenance restores timestamp order and evicts everything older than the
// window.
func (b *Bot) Maintenance() rankcache.Stats {
	start := time.Now()
	cutoff := b.opts.Now().Add(-b.opts.Window).Unix()

	b.mu.Lock()
	b.cache.Sort()
	b.cache.TruncateBefore(cutoff)
	stats := b.cache.Stats()
	b.mu.Unlock()

	metrics.MaintenanceDuration.Observe(time.Since(start).Seconds())
	observe(stats)
	b.log.Info("cache maintenance done",
		zap.Int64("cutoff", cutoff),
		zap.Int("groups", stats.Groups),
		zap.Int("users", stats.Users),
		zap.Int("timestamps", stats.Timestamps),
		zap.Duration("took", time.Since(start)))
	return stats
}

func observe(s rankcache.Stats) {
	metrics.CacheGroups.Set(float64(s.Groups))
	metrics.CacheUsers.Set(float64(s.Users))
	metrics.CacheTimestamps.Set(float64(s.Timestamps))
}

// OffFromWork queues an off-from-work report for every chat whose off time
// is the slot of now and whose workdays include now's weekday.
func (b *Bot) OffFromWork(ctx context.Context, now time.Time) (int, error) {
	now = now.UTC()
	slot := OffSlot(now)
	ids, err := b.deps.Settings.ChatsOffAt(ctx, slot, now.Weekday())
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, id := range ids {
		job := domain.NewJob(domain.ActionOffFromWork, id)
		job.ChatTitle = b.chatTitle(id)
		if err := b.deps.Publisher.Publish(ctx, job); err != nil {
			b.log.Error("publish off-from-work failed", zap.Int64("chat_id", id), zap.Error(err))
			continue
		}
		metrics.JobsPublished.WithLabelValues(string(job.Action)).Inc()
		sent++
	}
	b.log.Info("off-from-work dispatched", zap.String("slot", slot), zap.Int("chats", sent))
	return sent, nil
}

// Archive uploads every group's ranking for the window ending now. Failed
// uploads are logged and skipped.
func (b *Bot) Archive(ctx context.Context) (int, error) {
	if b.deps.Archiver == nil {
		return 0, nil
	}
	to := b.opts.Now()
	from := to.Add(-b.opts.Window)

	b.mu.Lock()
	snaps := make([]archive.Snapshot, 0, len(b.cache.GroupIDs()))
	for _, id := range b.cache.GroupIDs() {
		r, err := b.cache.RankBetween(id, from, to)
		if err != nil {
			b.mu.Unlock()
			return 0, err
		}
		snaps = append(snaps, archive.NewSnapshot(r, from, to))
	}
	b.mu.Unlock()

	done := 0
	for _, s := range snaps {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		key, err := b.deps.Archiver.Put(ctx, s)
		if err != nil {
			metrics.ArchiveUploads.WithLabelValues("error").Inc()
			b.log.Error("archive upload failed", zap.Int64("chat_id", s.GroupID), zap.Error(err))
			continue
		}
		metrics.ArchiveUploads.WithLabelValues("ok").Inc()
		b.log.Debug("archived ranking", zap.String("key", key))
		done++
	}
	return done, nil
}
