package service

import (
	"context"
	"testing"
	"time"

	"github.com/fathima-sithara/jungbot/internal/domain"
	"github.com/fathima-sithara/jungbot/internal/workday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffSlot(t *testing.T) {
	assert.Equal(t, "1800", OffSlot(time.Date(2026, 1, 5, 18, 14, 59, 0, time.UTC)))
	assert.Equal(t, "1815", OffSlot(time.Date(2026, 1, 5, 18, 15, 0, 0, time.UTC)))
	hk := time.FixedZone("HKT", 8*3600)
	assert.Equal(t, "1000", OffSlot(time.Date(2026, 1, 5, 18, 5, 0, 0, hk)))
}

func TestWarmUpLoadsWindowOnly(t *testing.T) {
	h := newHarness()
	for i, at := range []time.Time{
		fixedNow.Add(-time.Hour),
		fixedNow.Add(-10 * 24 * time.Hour),
		fixedNow.Add(-2 * time.Hour),
	} {
		m := groupMessage(chat, int64(i+1), "U", at, "x")
		_, err := h.store.SaveMessage(context.Background(), domain.NewStoredMessage(m))
		require.NoError(t, err)
	}

	n, err := h.bot.WarmUp(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ov := h.bot.Overview()
	assert.Equal(t, 1, ov.Stats.Groups)
	assert.Equal(t, 2, ov.Stats.Users)
	require.Len(t, ov.Groups, 1)
	assert.Equal(t, "Office", ov.Groups[0].Details.Title)
}

func TestMaintenanceEvictsOldTimestamps(t *testing.T) {
	h := newHarness()
	handle(t, h, groupMessage(chat, 1, "A", fixedNow.Add(-8*24*time.Hour), "old"))
	handle(t, h, groupMessage(chat, 1, "A", fixedNow.Add(-time.Hour), "new"))
	handle(t, h, groupMessage(chat, 2, "B", fixedNow.Add(-9*24*time.Hour), "old"))

	before := h.bot.Overview().Stats
	assert.Equal(t, 3, before.Timestamps)

	stats := h.bot.Maintenance()
	assert.Equal(t, 1, stats.Timestamps)
	assert.Equal(t, 2, stats.Users)
	assert.Equal(t, 1, stats.Groups)

	r, err := h.bot.WindowRanking(chat)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Total)
}

func TestOffFromWorkDispatch(t *testing.T) {
	h := newHarness()
	handle(t, h, groupMessage(-1, 1, "A", fixedNow, "x"))
	h.settings.off[-1] = offTime{slot: "1800", days: workday.Weekdays}
	h.settings.off[-2] = offTime{slot: "1800", days: workday.Saturday}
	h.settings.off[-3] = offTime{slot: "1830", days: workday.Weekdays}

	monday := time.Date(2026, 1, 5, 18, 7, 0, 0, time.UTC)
	n, err := h.bot.OffFromWork(context.Background(), monday)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, h.pub.jobs, 1)
	assert.Equal(t, domain.ActionOffFromWork, h.pub.jobs[0].Action)
	assert.EqualValues(t, -1, h.pub.jobs[0].ChatID)
	assert.Equal(t, "Office", h.pub.jobs[0].ChatTitle)
}

func TestArchiveUploadsEveryGroup(t *testing.T) {
	h := newHarness()
	handle(t, h, groupMessage(-1, 1, "A", fixedNow.Add(-time.Hour), "x"))
	handle(t, h, groupMessage(-2, 1, "A", fixedNow.Add(-time.Hour), "x"))
	handle(t, h, groupMessage(-3, 1, "A", fixedNow.Add(-time.Hour), "x"))
	h.arch.fail = map[int64]bool{-2: true}

	n, err := h.bot.Archive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, h.arch.snaps, 2)
	assert.EqualValues(t, -3, h.arch.snaps[0].GroupID)
	assert.EqualValues(t, -1, h.arch.snaps[1].GroupID)
	assert.Equal(t, 1, h.arch.snaps[0].Total)
	assert.Equal(t, fixedNow, h.arch.snaps[0].To)
}

func TestArchiveDisabled(t *testing.T) {
	h := newHarness()
	h.bot.deps.Archiver = nil
	n, err := h.bot.Archive(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
