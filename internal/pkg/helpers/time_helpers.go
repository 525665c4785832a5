package helpers

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// DateLayout is the calendar date format used in query params and skip requests
const DateLayout = "2006-01-02"

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// ParseDate parses a YYYY-MM-DD date in UTC
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// ParseDateRange parses optional from/to dates. The returned upper bound is exclusive:
// "to" is inclusive for callers, so one day is added to it.
func ParseDateRange(from, to string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if from != "" {
		d, err := ParseDate(from)
		if err != nil {
			return nil, nil, err
		}
		start = &d
	}
	if to != "" {
		d, err := ParseDate(to)
		if err != nil {
			return nil, nil, err
		}
		d = d.AddDate(0, 0, 1)
		end = &d
	}
	if start != nil && end != nil && !end.After(*start) {
		return nil, nil, fmt.Errorf("date range end %s is before start %s", to, from)
	}
	return start, end, nil
}

// DateKey formats t as the YYYY-MM-DD day it falls on in loc
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}
