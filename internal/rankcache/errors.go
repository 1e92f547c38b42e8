package rankcache

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrPrecondition marks caller mistakes, as opposed to data conditions.
var ErrPrecondition = errors.New("rankcache: precondition violated")

var (
	ErrMalformedBound = fmt.Errorf("%w: time bound is not an integer", ErrPrecondition)
	ErrInvalidWindow  = fmt.Errorf("%w: window start is after its end", ErrPrecondition)
)

// ParseBound parses a unix-seconds window bound received as text.
func ParseBound(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedBound, s)
	}
	return v, nil
}
