package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/gueldenstone/vogonix/internal/duration"
	"github.com/gueldenstone/vogonix/internal/models"
)

var (
	colorHeader  = color.New(color.Bold)
	colorKey     = color.New(color.FgCyan, color.Bold)
	colorRunning = color.New(color.FgGreen)
	colorPaused  = color.New(color.FgYellow)
	colorMuted   = color.New(color.Faint)
	colorWarn    = color.New(color.FgYellow)
)

// configureColor turns color off for --no-color, the config setting, or
// output that is not a terminal.
func configureColor(w io.Writer) {
	if IsNoColor() {
		color.NoColor = true
		return
	}
	f, ok := w.(*os.File)
	color.NoColor = !ok || !term.IsTerminal(int(f.Fd()))
}

// printJSON writes v as indented JSON.
func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

// formatElapsed renders a tracked duration, "0s" when nothing is tracked.
func formatElapsed(d time.Duration) string {
	return duration.MustFormat(d)
}

// formatAgo renders t relative to the CLI clock, or "never" for zero times.
func formatAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	s, err := duration.NewFormatter(now).TimeAgoFrom(t)
	if err != nil {
		// Timestamps from a tracker whose clock runs ahead of ours.
		logger.Debug("timestamp ahead of local clock", zap.Time("timestamp", t), zap.Error(err))
		return "just now"
	}
	return s
}

func formatState(state models.TimerState) string {
	switch state {
	case models.TimerRunning:
		return colorRunning.Sprint(state)
	case models.TimerPaused:
		return colorPaused.Sprint(state)
	default:
		return colorMuted.Sprint(state)
	}
}
