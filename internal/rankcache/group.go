package rankcache

import (
	"cmp"
	"math"
	"slices"
	"strings"
)

// UserDetails is the latest display snapshot of a sender.
type UserDetails struct {
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// DisplayName prefers "first last", then either half, then the username.
func (d UserDetails) DisplayName() string {
	switch {
	case d.FirstName != "" && d.LastName != "":
		return d.FirstName + " " + d.LastName
	case d.FirstName != "":
		return d.FirstName
	case d.LastName != "":
		return d.LastName
	default:
		return strings.TrimSpace(d.Username)
	}
}

// GroupDetails is the latest snapshot of a chat's metadata.
type GroupDetails struct {
	Title    string `json:"title,omitempty"`
	Type     string `json:"type,omitempty"`
	Username string `json:"username,omitempty"`
}

type User struct {
	ID      int64
	Details UserDetails
	Log     TimestampLog
}

// RankEntry is one line of a ranking. LastTimestamp is nil for a user that
// never sent anything still held by the cache.
type RankEntry struct {
	UserID        int64       `json:"user_id"`
	User          UserDetails `json:"user"`
	Count         int         `json:"count"`
	LastTimestamp *int64      `json:"last_timestamp"`
}

func (e RankEntry) last() int64 {
	if e.LastTimestamp == nil {
		return math.MinInt64
	}
	return *e.LastTimestamp
}

type GroupRanking struct {
	Total   int
	Entries []RankEntry
}

// Group indexes the users of one chat.
type Group struct {
	ID      int64
	Details GroupDetails
	users   map[int64]*User
}

func newGroup(id int64, details GroupDetails) *Group {
	return &Group{ID: id, Details: details, users: make(map[int64]*User)}
}

func (g *Group) HasUser(userID int64) bool {
	_, ok := g.users[userID]
	return ok
}

func (g *Group) User(userID int64) (*User, bool) {
	u, ok := g.users[userID]
	return u, ok
}

func (g *Group) Len() int { return len(g.users) }

// UpsertUser creates the user with an empty log, or replaces the details of
// an existing one leaving its log untouched.
func (g *Group) UpsertUser(userID int64, details UserDetails) *User {
	u, ok := g.users[userID]
	if !ok {
		u = &User{ID: userID}
		g.users[userID] = u
	}
	u.Details = details
	return u
}

func (g *Group) RecordEvent(userID int64, details UserDetails, ts int64) {
	g.UpsertUser(userID, details).Log.Append(ts)
}

// Rank counts every user's messages in [start, end] and orders them by count,
// then by most recent activity. Users with a zero count are kept.
func (g *Group) Rank(start, end int64) GroupRanking {
	entries := make([]RankEntry, 0, len(g.users))
	total := 0
	for _, u := range g.users {
		e := RankEntry{
			UserID: u.ID,
			User:   u.Details,
			Count:  u.Log.CountBetween(start, end),
		}
		if last, ok := u.Log.Last(); ok {
			e.LastTimestamp = &last
		}
		total += e.Count
		entries = append(entries, e)
	}

	slices.SortFunc(entries, func(a, b RankEntry) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		if c := cmp.Compare(b.last(), a.last()); c != 0 {
			return c
		}
		// map order is random; keep equal rows stable between calls
		return cmp.Compare(a.UserID, b.UserID)
	})

	return GroupRanking{Total: total, Entries: entries}
}

func (g *Group) Sort() {
	for _, u := range g.users {
		u.Log.Sort()
	}
}

func (g *Group) TruncateBefore(cutoff int64) {
	for _, u := range g.users {
		u.Log.TruncateBefore(cutoff)
	}
}
