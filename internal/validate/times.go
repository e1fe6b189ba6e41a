package validate

import (
	"fmt"
	"strings"
	"time"
)

// Layouts tolerated for candidate timestamps, tried in order. The model is
// told to emit ISO-8601 but garbled inputs produce garbled outputs, so we
// accept the common fallbacks too.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04",
	"01/02/2006 3:04 PM",
	"Jan 2, 2006 3:04 PM",
}

// Bare-date layouts; a bare date means an all-day event.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// ParseFlexible parses a candidate timestamp. The bool result reports
// whether the value was a bare date (no time component).
func ParseFlexible(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, fmt.Errorf("empty time value")
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, false, nil
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unparsable time value %q", s)
}

// endOfDay returns 23:59:59 on t's date, the default end for all-day events.
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
