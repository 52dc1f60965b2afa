package duration

import (
	"fmt"
	"strings"
	"time"

	str2dur "github.com/xhit/go-str2duration/v2"
)

// ParseTimeSpent parses a tracker time-spent string such as "1w 2d 3h 30m".
func ParseTimeSpent(s string) (time.Duration, error) {
	compact := strings.Join(strings.Fields(s), "")
	if compact == "" {
		return 0, fmt.Errorf("%w: empty time spent", ErrInvalidDuration)
	}
	d, err := str2dur.ParseDuration(compact)
	if err != nil {
		return 0, fmt.Errorf("parse time spent %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: time spent %q is negative", ErrInvalidDuration, s)
	}
	return d, nil
}
