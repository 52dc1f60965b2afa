package duration

import (
	"fmt"
	"time"
)

// JiraTimeLayout is the timestamp layout used by the Jira REST API.
const JiraTimeLayout = "2006-01-02T15:04:05.000-0700"

// timestampLayouts are tried in order. Layouts without a zone parse as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	JiraTimeLayout,
	"2006-01-02T15:04:05",
	time.DateTime,
	time.DateOnly,
}

// TimestampParseError is returned when a timestamp matches none of the
// accepted layouts.
type TimestampParseError struct {
	Value string
	Err   error
}

func (e *TimestampParseError) Error() string {
	return fmt.Sprintf("cannot parse timestamp %q: %v", e.Value, e.Err)
}

func (e *TimestampParseError) Unwrap() error {
	return e.Err
}

// Clock reports the current instant.
type Clock func() time.Time

// Formatter renders relative timestamps against a clock.
// The zero value uses time.Now.
type Formatter struct {
	Now Clock
}

// NewFormatter returns a Formatter reading time from now.
func NewFormatter(now Clock) *Formatter {
	return &Formatter{Now: now}
}

func (f *Formatter) now() time.Time {
	if f == nil || f.Now == nil {
		return time.Now()
	}
	return f.Now()
}

var defaultFormatter = &Formatter{}

// ParseTimestamp parses s into an instant.
func ParseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, &TimestampParseError{Value: s, Err: lastErr}
}

// TimeAgo reports how long ago timestamp was, using the largest unit only:
// "just now" under a minute, otherwise e.g. "1h ago".
func (f *Formatter) TimeAgo(timestamp string) (string, error) {
	past, err := ParseTimestamp(timestamp)
	if err != nil {
		return "", err
	}
	return f.TimeAgoFrom(past)
}

// TimeAgoFrom is TimeAgo for an already parsed instant.
func (f *Formatter) TimeAgoFrom(past time.Time) (string, error) {
	diff := f.now().Sub(past).Milliseconds() * int64(time.Millisecond)
	if diff < 0 {
		return "", fmt.Errorf("%w: %s is in the future", ErrInvalidDuration, past.Format(time.RFC3339))
	}
	if diff < int64(time.Minute) {
		return "just now", nil
	}
	parts, err := Decompose(diff)
	if err != nil {
		return "", err
	}
	return parts[0] + " ago", nil
}

// TimeAgo formats timestamp relative to the wall clock.
func TimeAgo(timestamp string) (string, error) {
	return defaultFormatter.TimeAgo(timestamp)
}

// TimeAgoFrom formats past relative to the wall clock.
func TimeAgoFrom(past time.Time) (string, error) {
	return defaultFormatter.TimeAgoFrom(past)
}
