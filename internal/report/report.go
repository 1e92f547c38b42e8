// Package report renders rankings as chat messages.
package report

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fathima-sithara/jungbot/internal/rankcache"
)

type Kind int

const (
	Top Kind = iota
	All
	Diver
)

// MessageLimit is the body size after which lines are elided. Telegram
// rejects messages above 4096 characters.
const MessageLimit = 3800

const DefaultLimit = 10

func header(kind Kind, limit int) string {
	switch kind {
	case All:
		return "All 冗員s in the last 7 days (last 上水 time):\n\n"
	case Diver:
		return fmt.Sprintf("Top %d 潛水員s in the last 7 days (last 上水 time):\n\n", limit)
	default:
		return fmt.Sprintf("Top %d 冗員s in the last 7 days (last 上水 time):\n\n", limit)
	}
}

// Lines picks the entries shown for kind. r.Entries must already be ranked.
func Lines(kind Kind, r rankcache.Ranking, limit int) []rankcache.RankEntry {
	if limit <= 0 {
		limit = DefaultLimit
	}
	switch kind {
	case Diver:
		out := slices.Clone(r.Entries)
		slices.Reverse(out)
		return out[:min(limit, len(out))]
	case All:
		return active(r.Entries, len(r.Entries))
	default:
		return active(r.Entries, limit)
	}
}

func active(entries []rankcache.RankEntry, limit int) []rankcache.RankEntry {
	out := make([]rankcache.RankEntry, 0, min(limit, len(entries)))
	for _, e := range entries {
		if len(out) == limit {
			break
		}
		if e.Count > 0 {
			out = append(out, e)
		}
	}
	return out
}

func Render(kind Kind, r rankcache.Ranking, now time.Time, limit int) string {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var b strings.Builder
	if r.Group != nil {
		fmt.Fprintf(&b, "圍爐區: %s\n\n", r.Group.Title)
	}
	b.WriteString(header(kind, limit))

	var body strings.Builder
	truncated := false
	for i, e := range Lines(kind, r, limit) {
		if body.Len() >= MessageLimit {
			truncated = true
			break
		}
		fmt.Fprintf(&body, "%d. %s %s%% (%s)\n", i+1, e.User.DisplayName(), percent(e.Count, r.Total), lastSeen(e, now))
	}
	if truncated {
		body.WriteString("...\n...\n")
	}
	b.WriteString(body.String())

	fmt.Fprintf(&b, "\nTotal messages: %d", r.Total)
	return b.String()
}

func percent(count, total int) string {
	if total == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(count)/float64(total)*100)
}

func lastSeen(e rankcache.RankEntry, now time.Time) string {
	if e.LastTimestamp == nil {
		return "never"
	}
	return humanize.RelTime(time.Unix(*e.LastTimestamp, 0), now, "ago", "from now")
}
