package rankcache

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logOf(ts ...int64) *TimestampLog {
	l := &TimestampLog{}
	for _, t := range ts {
		l.Append(t)
	}
	return l
}

func bruteCount(ts []int64, start, end int64) int {
	n := 0
	for _, t := range ts {
		if start <= t && t <= end {
			n++
		}
	}
	return n
}

func TestTimestampLogCountBetween(t *testing.T) {
	l := logOf(10, 20, 30)

	tests := []struct {
		name       string
		start, end int64
		want       int
	}{
		{"middle element", 15, 25, 1},
		{"before first", 5, 9, 0},
		{"after last", 31, 100, 0},
		{"inclusive bounds", 10, 30, 3},
		{"single point hit", 20, 20, 1},
		{"gap between elements", 21, 29, 0},
		{"covers everything", -100, 100, 3},
		{"inverted window", 30, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.CountBetween(tt.start, tt.end))
		})
	}
}

func TestTimestampLogCountBetweenDuplicates(t *testing.T) {
	l := logOf(5, 5, 5, 7, 7, 9)
	assert.Equal(t, 3, l.CountBetween(5, 5))
	assert.Equal(t, 5, l.CountBetween(5, 8))
	assert.Equal(t, 3, l.CountBetween(6, 9))
}

func TestTimestampLogCountMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		n := r.Intn(40)
		ts := make([]int64, n)
		for i := range ts {
			ts[i] = int64(r.Intn(100))
		}
		slices.Sort(ts)
		l := logOf(ts...)

		for q := 0; q < 50; q++ {
			a, b := int64(r.Intn(120)-10), int64(r.Intn(120)-10)
			if a > b {
				a, b = b, a
			}
			require.Equalf(t, bruteCount(ts, a, b), l.CountBetween(a, b), "ts=%v window=[%d,%d]", ts, a, b)
		}
	}
}

func TestTimestampLogEmpty(t *testing.T) {
	l := &TimestampLog{}
	_, ok := l.Last()
	assert.False(t, ok)
	assert.Zero(t, l.CountBetween(0, 100))

	l.Sort()
	l.TruncateBefore(50)
	assert.Zero(t, l.Len())
}

func TestTimestampLogLast(t *testing.T) {
	l := logOf(10, 20, 30)
	last, ok := l.Last()
	require.True(t, ok)
	assert.EqualValues(t, 30, last)
}

func TestTimestampLogDisorderDoesNotPanic(t *testing.T) {
	l := logOf(30, 10, 50, 20, 40)
	assert.NotPanics(t, func() {
		for a := int64(0); a < 60; a += 5 {
			for b := a; b < 60; b += 5 {
				l.CountBetween(a, b)
			}
		}
		l.TruncateBefore(25)
	})
}

func TestTimestampLogSortIsIdempotent(t *testing.T) {
	l := logOf(30, 10, 50, 20, 40, 10)
	l.Sort()
	once := l.Timestamps()
	l.Sort()
	assert.Equal(t, once, l.Timestamps())
	assert.Equal(t, []int64{10, 10, 20, 30, 40, 50}, once)
	assert.Equal(t, 3, l.CountBetween(15, 40))
}

func TestTimestampLogTruncateBefore(t *testing.T) {
	tests := []struct {
		name   string
		ts     []int64
		cutoff int64
		want   []int64
	}{
		{"cutoff before first", []int64{10, 20, 30}, 5, []int64{10, 20, 30}},
		{"cutoff equals first", []int64{10, 20, 30}, 10, []int64{10, 20, 30}},
		{"cutoff in the middle", []int64{10, 20, 30}, 15, []int64{20, 30}},
		{"cutoff on element keeps it", []int64{10, 20, 30}, 20, []int64{20, 30}},
		{"cutoff after last", []int64{10, 20, 30}, 31, nil},
		{"duplicates at cutoff", []int64{10, 20, 20, 20, 30}, 20, []int64{20, 20, 20, 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := logOf(tt.ts...)
			l.TruncateBefore(tt.cutoff)
			assert.Equal(t, tt.want, l.Timestamps())
		})
	}
}

func TestTimestampLogTruncateProperty(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		ts := make([]int64, r.Intn(30))
		for i := range ts {
			ts[i] = int64(r.Intn(50))
		}
		slices.Sort(ts)
		cutoff := int64(r.Intn(60) - 5)

		l := logOf(ts...)
		l.TruncateBefore(cutoff)
		got := l.Timestamps()

		var want []int64
		for _, v := range ts {
			if v >= cutoff {
				want = append(want, v)
			}
		}
		require.Equalf(t, want, got, "ts=%v cutoff=%d", ts, cutoff)
	}
}
