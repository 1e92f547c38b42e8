// Package workday stores a set of weekdays as a bitmask.
package workday

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Mask uint8

const (
	Sunday Mask = 1 << iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

const Weekdays = Monday | Tuesday | Wednesday | Thursday | Friday

var ErrUnknownDay = errors.New("workday: unknown day")

var names = [...]string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

func byName(s string) (Mask, bool) {
	for i, n := range names {
		if n == s {
			return 1 << i, true
		}
	}
	return 0, false
}

// Parse reads a comma separated list such as "MON,TUE,FRI". Repeated days
// are folded into one bit.
func Parse(s string) (Mask, error) {
	var m Mask
	for _, part := range strings.Split(s, ",") {
		d, ok := byName(strings.ToUpper(strings.TrimSpace(part)))
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownDay, part)
		}
		m |= d
	}
	return m, nil
}

func Of(d time.Weekday) Mask { return 1 << uint(d) }

func (m Mask) Has(d time.Weekday) bool { return m&Of(d) != 0 }

// String lists the days in Sunday-first order, e.g. "MON,WED".
func (m Mask) String() string {
	var out []string
	for i, n := range names {
		if m&(1<<i) != 0 {
			out = append(out, n)
		}
	}
	return strings.Join(out, ",")
}
