// Package rankcache keeps per-group, per-user message timestamps in memory
// and answers "who sent how many messages between two instants".
//
// A Cache is not safe for concurrent use. Callers serialise every call,
// typically behind one mutex owned by the service holding the Cache.
package rankcache

import (
	"slices"
	"time"
)

// Event is one chat message reduced to what the cache needs. Zero is a
// reserved sentinel: a zero GroupID, UserID or Timestamp means the field is
// absent, so group 0, user 0 and the unix epoch cannot be recorded.
// Telegram never issues those values. Details count as missing when nil.
type Event struct {
	GroupID   int64
	UserID    int64
	User      *UserDetails
	Group     *GroupDetails
	Timestamp int64
}

// IsValidEvent reports whether ev carries a group, a user, user details and
// a timestamp, each non-zero. Ordering of timestamps is not checked.
func IsValidEvent(ev Event) bool {
	return ev.GroupID != 0 && ev.UserID != 0 && ev.User != nil && ev.Timestamp != 0
}

// Ranking is the answer to Cache.Rank. Group is nil for a group the cache
// has never seen.
type Ranking struct {
	GroupID int64         `json:"group_id"`
	Group   *GroupDetails `json:"group"`
	Total   int           `json:"total"`
	Entries []RankEntry   `json:"entries"`
}

type Stats struct {
	Groups     int `json:"groups"`
	Users      int `json:"users"`
	Timestamps int `json:"timestamps"`
}

type Cache struct {
	groups map[int64]*Group
}

func New() *Cache {
	return &Cache{groups: make(map[int64]*Group)}
}

// AddMessage records ev. It returns false, changing nothing, when ev is not
// valid.
func (c *Cache) AddMessage(ev Event) bool {
	if !IsValidEvent(ev) {
		return false
	}

	g, ok := c.groups[ev.GroupID]
	if !ok {
		g = newGroup(ev.GroupID, GroupDetails{})
		c.groups[ev.GroupID] = g
	}
	if ev.Group != nil {
		g.Details = *ev.Group
	}

	g.RecordEvent(ev.UserID, *ev.User, ev.Timestamp)
	return true
}

func (c *Cache) Group(groupID int64) (*Group, bool) {
	g, ok := c.groups[groupID]
	return g, ok
}

// GroupIDs returns the known group ids in ascending order.
func (c *Cache) GroupIDs() []int64 {
	ids := make([]int64, 0, len(c.groups))
	for id := range c.groups {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Rank ranks the users of groupID over [start, end], both inclusive.
// An unknown group yields an empty ranking and no error.
func (c *Cache) Rank(groupID, start, end int64) (Ranking, error) {
	if start > end {
		return Ranking{}, ErrInvalidWindow
	}

	g, ok := c.groups[groupID]
	if !ok {
		return Ranking{GroupID: groupID, Entries: []RankEntry{}}, nil
	}

	gr := g.Rank(start, end)
	details := g.Details
	return Ranking{
		GroupID: groupID,
		Group:   &details,
		Total:   gr.Total,
		Entries: gr.Entries,
	}, nil
}

// RankBetween is Rank with the window given as instants, truncated to seconds.
func (c *Cache) RankBetween(groupID int64, from, to time.Time) (Ranking, error) {
	return c.Rank(groupID, from.Unix(), to.Unix())
}

// Sort restores ascending order in every log.
func (c *Cache) Sort() {
	for _, g := range c.groups {
		g.Sort()
	}
}

// TruncateBefore evicts every timestamp older than cutoff. Users and groups
// are kept even when their logs become empty.
func (c *Cache) TruncateBefore(cutoff int64) {
	for _, g := range c.groups {
		g.TruncateBefore(cutoff)
	}
}

func (c *Cache) Stats() Stats {
	s := Stats{Groups: len(c.groups)}
	for _, g := range c.groups {
		s.Users += len(g.users)
		for _, u := range g.users {
			s.Timestamps += u.Log.Len()
		}
	}
	return s
}
