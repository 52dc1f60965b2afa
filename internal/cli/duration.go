package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gueldenstone/vogonix/internal/duration"
	werrors "github.com/gueldenstone/vogonix/internal/errors"
)

var durationNanos bool

func init() {
	durationCmd.Flags().BoolVar(&durationNanos, "ns", false, "Interpret the value as nanoseconds")
	rootCmd.AddCommand(durationCmd)
	rootCmd.AddCommand(agoCmd)
}

var durationCmd = &cobra.Command{
	Use:   "duration <seconds>",
	Short: "Format a number of seconds as a compact duration",
	Long: `Format a non-negative duration using the units y, w, d, h, m and s.
Zero units are omitted and a year is 365 days.

Examples:
  vogonix duration 3661          # 1h 1m 1s
  vogonix duration --ns 90000000000   # 1m 30s`,
	Args: cobra.ExactArgs(1),
	RunE: runDuration,
}

var agoCmd = &cobra.Command{
	Use:   "ago <timestamp>",
	Short: "Describe how long ago a timestamp was",
	Long: `Print the largest whole unit elapsed since the timestamp, or "just now"
for less than a minute. Timestamps in the future are rejected.

Accepted formats: RFC 3339, Jira (2024-03-15T10:00:00.000+0000),
"2024-03-15T10:00:00", "2024-03-15 10:00:00" and "2024-03-15". Timestamps
without a zone are UTC.`,
	Args: cobra.ExactArgs(1),
	RunE: runAgo,
}

type durationResult struct {
	Input     int64  `json:"input"`
	Unit      string `json:"unit"`
	Formatted string `json:"formatted"`
}

func runDuration(cmd *cobra.Command, args []string) error {
	value, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return werrors.InvalidArgs("invalid duration %q: expected an integer", args[0])
	}

	result := durationResult{Input: value, Unit: "s"}
	if durationNanos {
		result.Unit = "ns"
		result.Formatted, err = duration.FormatDurationFromNanoseconds(value)
	} else {
		result.Formatted, err = duration.FormatDuration(value)
	}
	if err != nil {
		return werrors.FromDuration(err, "cannot format %s", args[0])
	}

	if IsJSON() {
		return printJSON(cmd, result)
	}
	OutputLine(cmd, "%s", result.Formatted)
	return nil
}

type agoResult struct {
	Timestamp string `json:"timestamp"`
	Ago       string `json:"ago"`
}

func runAgo(cmd *cobra.Command, args []string) error {
	ago, err := duration.NewFormatter(now).TimeAgo(args[0])
	if err != nil {
		return werrors.FromDuration(err, "cannot describe %q", args[0])
	}

	if IsJSON() {
		return printJSON(cmd, agoResult{Timestamp: args[0], Ago: ago})
	}
	OutputLine(cmd, "%s", ago)
	return nil
}
