package search

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// TimeRange is a calendar-date interval with optional open ends. A zero
// Start or End means that side is unbounded; at least one side is always
// set after a successful parse.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// ParseTimeRange parses "<start>~<end>" where either date may be empty but
// not both, dates are YYYY-MM-DD, and start must not be after end.
func ParseTimeRange(input string) (*TimeRange, error) {
	trimmed := strings.TrimSpace(input)
	left, right, ok := strings.Cut(trimmed, "~")
	if !ok {
		return nil, fmt.Errorf("invalid time range %q", trimmed)
	}

	var r TimeRange
	if v := strings.TrimSpace(left); v != "" {
		start, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid time range %q", trimmed)
		}
		r.Start = start
	}
	if v := strings.TrimSpace(right); v != "" {
		end, err := time.ParseInLocation(dateLayout, v, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid time range %q", trimmed)
		}
		r.End = end
	}
	if r.Start.IsZero() && r.End.IsZero() {
		return nil, fmt.Errorf("invalid time range %q", trimmed)
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.Start.After(r.End) {
		return nil, fmt.Errorf("invalid time range %q", trimmed)
	}
	return &r, nil
}

// EpochBounds converts the range to inclusive epoch-second bounds: the start
// date at 00:00:00 UTC and the end date at 23:59:59 UTC. A nil pointer means
// that side is unbounded.
func (r *TimeRange) EpochBounds() (start, end *int64) {
	if !r.Start.IsZero() {
		s := r.Start.Unix()
		start = &s
	}
	if !r.End.IsZero() {
		e := r.End.Add(23*time.Hour + 59*time.Minute + 59*time.Second).Unix()
		end = &e
	}
	return start, end
}
