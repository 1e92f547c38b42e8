package rankcache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(group, user, ts int64) Event {
	return Event{
		GroupID:   group,
		UserID:    user,
		User:      &UserDetails{FirstName: "user", Username: "u"},
		Group:     &GroupDetails{Title: "group", Type: "supergroup"},
		Timestamp: ts,
	}
}

func TestCacheAddMessageThenRank(t *testing.T) {
	c := New()
	require.True(t, c.AddMessage(event(1, 11, 100)))

	r, err := c.Rank(1, 0, 200)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Total)
	require.Len(t, r.Entries, 1)
	assert.EqualValues(t, 11, r.Entries[0].UserID)
	require.NotNil(t, r.Group)
	assert.Equal(t, "group", r.Group.Title)
}

func TestCacheRejectsInvalidEvents(t *testing.T) {
	c := New()
	require.True(t, c.AddMessage(event(1, 11, 100)))

	invalid := []Event{
		{GroupID: 1},
		{GroupID: 1, UserID: 11, Timestamp: 150},
		{GroupID: 1, User: &UserDetails{}, Timestamp: 150},
		{UserID: 11, User: &UserDetails{}, Timestamp: 150},
		{GroupID: 1, UserID: 11, User: &UserDetails{}},
		{GroupID: 2, UserID: 11, User: &UserDetails{}},
		// zero ids and the epoch are sentinels for absent fields
		{GroupID: 0, UserID: 11, User: &UserDetails{}, Timestamp: 150},
		{GroupID: 1, UserID: 0, User: &UserDetails{}, Timestamp: 150},
		{GroupID: 1, UserID: 11, User: &UserDetails{}, Timestamp: 0},
	}
	for _, ev := range invalid {
		assert.False(t, IsValidEvent(ev))
		assert.False(t, c.AddMessage(ev))
	}

	r, err := c.Rank(1, 0, 200)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Total)
	assert.Equal(t, []int64{1}, c.GroupIDs())
}

func TestCacheRankUnknownGroup(t *testing.T) {
	c := New()
	r, err := c.Rank(404, 0, 100)
	require.NoError(t, err)
	assert.Nil(t, r.Group)
	assert.Zero(t, r.Total)
	assert.NotNil(t, r.Entries)
	assert.Empty(t, r.Entries)
}

func TestCacheRankInvalidWindow(t *testing.T) {
	c := New()
	c.AddMessage(event(1, 11, 100))

	_, err := c.Rank(1, 200, 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidWindow))
	assert.True(t, errors.Is(err, ErrPrecondition))

	// unknown groups still report the precondition
	_, err = c.Rank(404, 200, 100)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestParseBound(t *testing.T) {
	v, err := ParseBound(" 1700000000 ")
	require.NoError(t, err)
	assert.EqualValues(t, 1700000000, v)

	for _, in := range []string{"", "abc", "12.5", "NaN", "1e9"} {
		_, err := ParseBound(in)
		assert.ErrorIsf(t, err, ErrMalformedBound, "input %q", in)
		assert.ErrorIs(t, err, ErrPrecondition)
	}
}

func TestCacheTieBreakByRecency(t *testing.T) {
	c := New()
	for _, ts := range []int64{10, 30} {
		c.AddMessage(event(1, 100, ts)) // A: last 30
	}
	for _, ts := range []int64{20, 40} {
		c.AddMessage(event(1, 200, ts)) // B: last 40
	}

	r, err := c.Rank(1, 0, 50)
	require.NoError(t, err)
	assert.Equal(t, 4, r.Total)
	require.Len(t, r.Entries, 2)
	assert.EqualValues(t, 200, r.Entries[0].UserID)
	assert.EqualValues(t, 100, r.Entries[1].UserID)
	assert.Equal(t, 2, r.Entries[0].Count)
	assert.EqualValues(t, 40, *r.Entries[0].LastTimestamp)
}

func TestCacheRankOrderAndZeroCounts(t *testing.T) {
	c := New()
	c.AddMessage(event(1, 1, 10))
	c.AddMessage(event(1, 2, 20))
	c.AddMessage(event(1, 2, 21))
	c.AddMessage(event(1, 2, 22))
	c.AddMessage(event(1, 3, 500)) // outside the window
	g, ok := c.Group(1)
	require.True(t, ok)
	g.UpsertUser(4, UserDetails{FirstName: "silent"})

	r, err := c.Rank(1, 0, 100)
	require.NoError(t, err)

	ids := make([]int64, 0, len(r.Entries))
	sum := 0
	for _, e := range r.Entries {
		ids = append(ids, e.UserID)
		sum += e.Count
	}
	// user 3 has the most recent activity among the zero counts; user 4 none
	assert.Equal(t, []int64{2, 1, 3, 4}, ids)
	assert.Equal(t, sum, r.Total)
	assert.Equal(t, 4, r.Total)
	assert.Nil(t, r.Entries[3].LastTimestamp)
}

func TestCacheMetadataLastWriteWins(t *testing.T) {
	c := New()
	ev := event(1, 11, 100)
	c.AddMessage(ev)

	ev2 := event(1, 11, 101)
	ev2.User = &UserDetails{FirstName: "renamed"}
	ev2.Group = &GroupDetails{Title: "new title"}
	c.AddMessage(ev2)

	g, ok := c.Group(1)
	require.True(t, ok)
	u, ok := g.User(11)
	require.True(t, ok)
	assert.Equal(t, "renamed", u.Details.DisplayName())
	assert.Equal(t, 2, u.Log.Len())
	assert.Equal(t, "new title", g.Details.Title)
}

func TestGroupUpsertKeepsLog(t *testing.T) {
	g := newGroup(1, GroupDetails{})
	g.RecordEvent(5, UserDetails{FirstName: "a"}, 10)
	assert.True(t, g.HasUser(5))
	assert.False(t, g.HasUser(6))

	g.UpsertUser(5, UserDetails{FirstName: "b"})
	u, _ := g.User(5)
	assert.Equal(t, "b", u.Details.FirstName)
	assert.Equal(t, []int64{10}, u.Log.Timestamps())
}

func TestCacheSortRepairsDisorder(t *testing.T) {
	c := New()
	for _, ts := range []int64{50, 10, 40, 20, 30} {
		c.AddMessage(event(1, 11, ts))
	}
	c.Sort()

	r, err := c.Rank(1, 15, 45)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Total)

	g, _ := c.Group(1)
	u, _ := g.User(11)
	before := u.Log.Timestamps()
	c.Sort()
	assert.Equal(t, before, u.Log.Timestamps())
}

func TestCacheTruncateBefore(t *testing.T) {
	c := New()
	for _, ts := range []int64{10, 20, 30} {
		c.AddMessage(event(1, 11, ts))
	}
	for _, ts := range []int64{5, 6} {
		c.AddMessage(event(2, 22, ts))
	}

	c.TruncateBefore(20)

	g1, _ := c.Group(1)
	u1, _ := g1.User(11)
	assert.Equal(t, []int64{20, 30}, u1.Log.Timestamps())

	// emptied logs keep their user and group
	g2, ok := c.Group(2)
	require.True(t, ok)
	u2, ok := g2.User(22)
	require.True(t, ok)
	assert.Zero(t, u2.Log.Len())

	assert.Equal(t, Stats{Groups: 2, Users: 2, Timestamps: 2}, c.Stats())
}

func TestCacheRankBetween(t *testing.T) {
	c := New()
	now := time.Unix(1_700_000_000, 0)
	c.AddMessage(event(1, 11, now.Add(-time.Hour).Unix()))
	c.AddMessage(event(1, 11, now.Add(-8*24*time.Hour).Unix()))

	r, err := c.RankBetween(1, now.Add(-7*24*time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Total)
}

func TestUserDetailsDisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", UserDetails{FirstName: "Ada", LastName: "Lovelace", Username: "ada"}.DisplayName())
	assert.Equal(t, "Ada", UserDetails{FirstName: "Ada", Username: "ada"}.DisplayName())
	assert.Equal(t, "Lovelace", UserDetails{LastName: "Lovelace"}.DisplayName())
	assert.Equal(t, "ada", UserDetails{Username: "ada"}.DisplayName())
	assert.Equal(t, "", UserDetails{}.DisplayName())
}
