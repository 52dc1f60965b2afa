// Package duration renders elapsed time as compact unit strings such as
// "1w 2d 3h" and relative timestamps such as "5m ago".
//
// Every formatter funnels through Decompose, which splits a non-negative
// nanosecond count into descending year/week/day/hour/minute/second parts.
package duration

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDuration is returned when a duration is negative.
var ErrInvalidDuration = errors.New("invalid duration")

// Unit is a labelled span of whole seconds.
type Unit struct {
	Label   string
	Seconds int64
}

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
	secondsPerWeek   = 7 * secondsPerDay
	// A year is a flat 365 days.
	secondsPerYear = 365 * secondsPerDay

	nanosPerSecond = int64(time.Second)
)

var units = [...]Unit{
	{"y", secondsPerYear},
	{"w", secondsPerWeek},
	{"d", secondsPerDay},
	{"h", secondsPerHour},
	{"m", secondsPerMinute},
	{"s", 1},
}

// Units returns the unit table, largest unit first.
func Units() []Unit {
	out := make([]Unit, len(units))
	copy(out[:], units[:])
	return out
}

// Decompose splits nanoseconds into "{count}{label}" parts, largest unit
// first. Units with a zero count are omitted. Zero decomposes to ["0s"].
// Sub-second remainders are truncated, so values below one second (other
// than zero) yield an empty slice.
func Decompose(nanoseconds int64) ([]string, error) {
	if nanoseconds < 0 {
		return nil, fmt.Errorf("%w: %dns is negative", ErrInvalidDuration, nanoseconds)
	}
	if nanoseconds == 0 {
		return []string{"0s"}, nil
	}
	return decomposeSeconds(nanoseconds / nanosPerSecond), nil
}

func decomposeSeconds(remaining int64) []string {
	parts := make([]string, 0, len(units))
	for _, u := range units {
		count := remaining / u.Seconds
		if count == 0 {
			continue
		}
		parts = append(parts, strconv.FormatInt(count, 10)+u.Label)
		remaining %= u.Seconds
	}
	return parts
}

// FormatDuration formats a whole number of seconds, e.g. 3661 -> "1h 1m 1s".
func FormatDuration(seconds int64) (string, error) {
	if seconds < 0 {
		return "", fmt.Errorf("%w: %ds is negative", ErrInvalidDuration, seconds)
	}
	if seconds > math.MaxInt64/nanosPerSecond {
		// The nanosecond form would overflow; the result is identical.
		return join(decomposeSeconds(seconds)), nil
	}
	parts, err := Decompose(seconds * nanosPerSecond)
	if err != nil {
		return "", err
	}
	return join(parts), nil
}

// FormatDurationFromNanoseconds formats a nanosecond count, e.g.
// 90_000_000_000 -> "1m 30s".
func FormatDurationFromNanoseconds(nanoseconds int64) (string, error) {
	if nanoseconds < 0 {
		return "", fmt.Errorf("%w: %dns is negative", ErrInvalidDuration, nanoseconds)
	}
	parts, err := Decompose(nanoseconds)
	if err != nil {
		return "", err
	}
	return join(parts), nil
}

// Format formats a time.Duration.
func Format(d time.Duration) (string, error) {
	return FormatDurationFromNanoseconds(int64(d))
}

// MustFormat is like Format but renders negative durations as "0s".
// It is meant for display of values that are non-negative by construction.
func MustFormat(d time.Duration) string {
	if d < 0 {
		return "0s"
	}
	s, _ := Format(d)
	return s
}

func join(parts []string) string {
	if len(parts) == 0 {
		return "0s"
	}
	return strings.Join(parts, " ")
}
