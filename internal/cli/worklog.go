package cli

import (
	"github.com/spf13/cobra"
)

var worklogComment string

func init() {
	worklogSubmitCmd.Flags().StringVarP(&worklogComment, "comment", "m", "", "Worklog comment")
	worklogCmd.AddCommand(worklogSubmitCmd)
	worklogCmd.AddCommand(worklogListCmd)
	rootCmd.AddCommand(worklogCmd)
}

var worklogCmd = &cobra.Command{
	Use:   "worklog",
	Short: "Submit and inspect worklogs",
}

var worklogSubmitCmd = &cobra.Command{
	Use:   "submit <KEY>",
	Short: "Submit the tracked time of an issue to Jira",
	Long: `Round the issue's tracked time to the configured step, post it to Jira
as a worklog ending now, and reset the timer. The timer is left untouched
when Jira rejects the worklog.`,
	Args: cobra.ExactArgs(1),
	RunE: runWorklogSubmit,
}

var worklogListCmd = &cobra.Command{
	Use:   "list <KEY>",
	Short: "List the worklogs of an issue",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorklogList,
}

func runWorklogSubmit(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	w, err := a.worklogs.Submit(cmd.Context(), args[0], worklogComment)
	if err != nil {
		return err
	}

	if IsJSON() {
		return printJSON(cmd, w)
	}
	OutputLine(cmd, "Logged %s on %s", formatElapsed(w.Duration), colorKey.Sprint(w.IssueKey))
	return nil
}

func runWorklogList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	worklogs, err := a.worklogs.List(args[0])
	if err != nil {
		return err
	}

	if IsJSON() {
		return printJSON(cmd, worklogs)
	}
	if len(worklogs) == 0 {
		OutputLine(cmd, "No worklogs for %s", args[0])
		return nil
	}
	printWorklogTable(cmd, worklogs)
	return nil
}
