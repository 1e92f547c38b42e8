package rankcache

import "slices"

// TimestampLog is the append-only list of send times (unix seconds) of one
// user in one group. Appends are expected in non-decreasing order; Sort
// repairs the order when that does not hold. Range queries are only exact on
// a sorted log.
type TimestampLog struct {
	ts []int64
}

func (l *TimestampLog) Append(t int64) {
	l.ts = append(l.ts, t)
}

// Last returns the most recently appended timestamp.
func (l *TimestampLog) Last() (int64, bool) {
	if len(l.ts) == 0 {
		return 0, false
	}
	return l.ts[len(l.ts)-1], true
}

func (l *TimestampLog) Len() int { return len(l.ts) }

// Timestamps returns a copy of the log.
func (l *TimestampLog) Timestamps() []int64 {
	return slices.Clone(l.ts)
}

// CountBetween returns how many timestamps t satisfy start <= t <= end.
// A window with start > end counts nothing.
func (l *TimestampLog) CountBetween(start, end int64) int {
	ts := l.ts
	n := len(ts)
	if n == 0 || ts[n-1] < start || end < ts[0] {
		return 0
	}

	// ts[n-1] >= start and ts[0] <= end hold here, which anchors both searches.
	mi := searchFirst(-1, n-1, func(i int) bool { return start <= ts[i] })
	mx := searchLast(0, n, func(i int) bool { return ts[i] <= end })

	// mi > mx when the window falls between two entries.
	return max(0, mx-mi+1)
}

func (l *TimestampLog) Sort() {
	slices.Sort(l.ts)
}

// TruncateBefore drops every timestamp older than cutoff. The log must be
// sorted; entries out of order around the cutoff may survive.
func (l *TimestampLog) TruncateBefore(cutoff int64) {
	ts := l.ts
	n := len(ts)
	if n == 0 || cutoff <= ts[0] {
		return
	}

	ix := searchLast(0, n, func(i int) bool { return ts[i] < cutoff })
	if ix == n-1 {
		l.ts = nil
		return
	}
	// copy so the evicted prefix can be collected
	l.ts = slices.Clone(ts[ix+1:])
}
