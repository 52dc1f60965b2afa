package duration

import (
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDecompose(t *testing.T) {
	tests := []struct {
		name  string
		nanos int64
		want  []string
	}{
		{"zero", 0, []string{"0s"}},
		{"one second", int64(time.Second), []string{"1s"}},
		{"sub-second truncated", int64(1500 * time.Millisecond), []string{"1s"}},
		{"below one second", int64(999 * time.Millisecond), []string{}},
		{"minute and seconds", int64(90 * time.Second), []string{"1m", "30s"}},
		{"exact week", int64(7 * 24 * time.Hour), []string{"1w"}},
		{"week and day", int64(8 * 24 * time.Hour), []string{"1w", "1d"}},
		{"gap between units", int64(7*24*time.Hour + 5*time.Second), []string{"1w", "5s"}},
		{"exact year", int64(365 * 24 * time.Hour), []string{"1y"}},
		{"leap day not special", int64(366 * 24 * time.Hour), []string{"1y", "1d"}},
		{"every unit", int64(365*24*time.Hour + 8*24*time.Hour + time.Hour + time.Minute + time.Second),
			[]string{"1y", "1w", "1d", "1h", "1m", "1s"}},
		{"largest", math.MaxInt64, []string{"292y", "24w", "3d", "23h", "47m", "16s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decompose(tt.nanos)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecompose_Negative(t *testing.T) {
	_, err := Decompose(-1)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestDecompose_Properties(t *testing.T) {
	labels := make(map[string]int, len(units))
	for i, u := range units {
		labels[u.Label] = i
	}

	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.Int64Range(1, math.MaxInt64).Draw(rt, "nanos")
		parts, err := Decompose(n)
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}

		var total int64
		prev := -1
		for _, p := range parts {
			label := p[len(p)-1:]
			idx, ok := labels[label]
			if !ok {
				rt.Fatalf("unknown label in %q", p)
			}
			if idx <= prev {
				rt.Fatalf("labels not strictly descending in %v", parts)
			}
			prev = idx

			count, err := strconv.ParseInt(p[:len(p)-1], 10, 64)
			if err != nil || count <= 0 {
				rt.Fatalf("non-positive count in %q", p)
			}
			total += count * units[idx].Seconds
		}

		if total != n/int64(time.Second) {
			rt.Fatalf("parts %v sum to %ds, want %ds", parts, total, n/int64(time.Second))
		}
	})
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds int64
		want    string
	}{
		{"zero", 0, "0s"},
		{"seconds only", 45, "45s"},
		{"hour minute second", 3661, "1h 1m 1s"},
		{"exact hour", 3600, "1h"},
		{"exact week", 604800, "1w"},
		{"week and day", 691200, "1w 1d"},
		{"two years", 2 * 365 * 86400, "2y"},
		{"overflowing nanoseconds", math.MaxInt64, "292471208677y 27w 6d 15h 30m 7s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatDuration(tt.seconds)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDuration_Negative(t *testing.T) {
	_, err := FormatDuration(-1)
	require.ErrorIs(t, err, ErrInvalidDuration)
	assert.Contains(t, err.Error(), "-1s")
}

func TestFormatDurationFromNanoseconds(t *testing.T) {
	tests := []struct {
		name  string
		nanos int64
		want  string
	}{
		{"zero", 0, "0s"},
		{"minute and a half", 90_000_000_000, "1m 30s"},
		{"sub-second", 500_000_000, "0s"},
		{"day", int64(24 * time.Hour), "1d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatDurationFromNanoseconds(tt.nanos)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDurationFromNanoseconds_Negative(t *testing.T) {
	_, err := FormatDurationFromNanoseconds(-1)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestFormat(t *testing.T) {
	got, err := Format(2*time.Hour + 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "2h 5m", got)

	assert.Equal(t, "0s", MustFormat(-time.Second))
	assert.Equal(t, "1m", MustFormat(time.Minute))
}

func TestUnits(t *testing.T) {
	got := Units()
	require.Len(t, got, 6)

	var labels []string
	for _, u := range got {
		labels = append(labels, u.Label)
	}
	assert.Equal(t, "y w d h m s", strings.Join(labels, " "))

	got[0].Seconds = 1
	assert.Equal(t, int64(365*24*3600), Units()[0].Seconds)
}
