package cli

import (
	"github.com/spf13/cobra"

	"github.com/gueldenstone/vogonix/internal/service"
)

func init() {
	timerCmd.AddCommand(timerStartCmd)
	timerCmd.AddCommand(timerPauseCmd)
	timerCmd.AddCommand(timerResetCmd)
	timerCmd.AddCommand(timerStatusCmd)
	rootCmd.AddCommand(timerCmd)
}

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Track time per issue",
	Long: `Timers keep running between invocations: starting a timer records the
start instant, pausing folds the running span into the stored total.`,
}

var timerStartCmd = &cobra.Command{
	Use:   "start <KEY>",
	Short: "Start or resume the timer of an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTimerChange(cmd, args[0], (*service.TimerService).Start, "Started")
	},
}

var timerPauseCmd = &cobra.Command{
	Use:   "pause <KEY>",
	Short: "Pause the timer of an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTimerChange(cmd, args[0], (*service.TimerService).Pause, "Paused")
	},
}

var timerResetCmd = &cobra.Command{
	Use:   "reset <KEY>",
	Short: "Discard the tracked time of an issue",
	Args:  cobra.ExactArgs(1),
	RunE:  runTimerReset,
}

var timerStatusCmd = &cobra.Command{
	Use:   "status [KEY]",
	Short: "Show one timer or all timers",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTimerStatus,
}

type timerChange func(*service.TimerService, string) (*service.TimerStatus, error)

func runTimerChange(cmd *cobra.Command, key string, change timerChange, verb string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := change(a.timers, key)
	if err != nil {
		return err
	}

	if IsJSON() {
		return printJSON(cmd, st)
	}
	OutputLine(cmd, "%s %s at %s", verb, colorKey.Sprint(st.IssueKey), formatElapsed(st.Elapsed))
	return nil
}

func runTimerReset(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.timers.Reset(args[0]); err != nil {
		return err
	}

	if IsJSON() {
		return printJSON(cmd, map[string]interface{}{"issue_key": args[0], "reset": true})
	}
	OutputLine(cmd, "Reset timer for %s", args[0])
	return nil
}

func runTimerStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var timers []*service.TimerStatus
	if len(args) == 1 {
		st, err := a.timers.Get(args[0])
		if err != nil {
			return err
		}
		timers = append(timers, st)
	} else {
		if timers, err = a.timers.List(); err != nil {
			return err
		}
	}

	if IsJSON() {
		return printJSON(cmd, timers)
	}
	if len(timers) == 0 {
		OutputLine(cmd, "No timers. Run 'vogonix timer start <KEY>' to start one.")
		return nil
	}

	table := newTable(cmd.OutOrStdout(), "Issue", "State", "Tracked", "Since")
	for _, st := range timers {
		since := ""
		if st.RunningSince != nil {
			since = formatAgo(*st.RunningSince)
		}
		table.Append([]string{colorKey.Sprint(st.IssueKey), formatState(st.State), formatElapsed(st.Elapsed), since})
	}
	table.Render()
	return nil
}
