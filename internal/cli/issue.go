package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gueldenstone/vogonix/internal/models"
	"github.com/gueldenstone/vogonix/internal/service"
)

// Issue list flags
var (
	issueListSync    bool
	issueListProject string
)

func init() {
	issueListCmd.Flags().BoolVarP(&issueListSync, "sync", "s", false, "Sync with Jira before listing")
	issueListCmd.Flags().StringVarP(&issueListProject, "project", "p", "", "Only show issues of this project")

	issueCmd.AddCommand(issueSyncCmd)
	issueCmd.AddCommand(issueListCmd)
	issueCmd.AddCommand(issueShowCmd)
	rootCmd.AddCommand(issueCmd)
}

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Work with assigned Jira issues",
}

var issueSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch assigned issues and their worklogs",
	Long: `Fetch the open issues assigned to you, with their worklogs, and store
them locally. When Jira cannot be reached the local cache is kept and the
command reports offline mode instead of failing.`,
	Args: cobra.NoArgs,
	RunE: runIssueSync,
}

var issueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached issues",
	Long: `List the locally cached issues with the time logged on each.

Examples:
  vogonix issue list                 # cached issues only
  vogonix issue list --sync          # refresh from Jira first, cache if offline
  vogonix issue list --project PROJ  # issues of one project`,
	Args: cobra.NoArgs,
	RunE:  runIssueList,
}

var issueShowCmd = &cobra.Command{
	Use:   "show <KEY>",
	Short: "Show an issue with its worklogs",
	Args:  cobra.ExactArgs(1),
	RunE:  runIssueShow,
}

func runIssueSync(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.issues.Sync(cmd.Context())
	if err != nil {
		return err
	}

	if IsJSON() {
		return printJSON(cmd, result)
	}
	printSyncResult(cmd, result)
	return nil
}

func printSyncResult(cmd *cobra.Command, result *service.SyncResult) {
	if result.Offline {
		fmt.Fprintln(cmd.ErrOrStderr(), colorWarn.Sprintf("Offline: %s. Local cache left unchanged.", result.Reason))
		return
	}
	OutputLine(cmd, "Synced %d issue(s)", result.Fetched)
}

type issueRow struct {
	*models.Issue
	Tracked string `json:"tracked"`
	Updated string `json:"updated"`
}

func runIssueList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var issues []*models.Issue
	if issueListSync {
		var result *service.SyncResult
		issues, result, err = a.issues.Assigned(cmd.Context())
		if err != nil {
			return err
		}
		if result.Offline {
			fmt.Fprintln(cmd.ErrOrStderr(), colorWarn.Sprintf("Offline: %s. Showing cached issues.", result.Reason))
		}
	} else if issues, err = a.issues.List(); err != nil {
		return err
	}

	project := strings.ToUpper(strings.TrimSpace(issueListProject))
	rows := make([]issueRow, 0, len(issues))
	for _, issue := range issues {
		if project != "" && issue.ProjectKey() != project {
			continue
		}
		rows = append(rows, issueRow{
			Issue:   issue,
			Tracked: formatElapsed(issue.TimeSpent),
			Updated: formatAgo(issue.UpdatedAt),
		})
	}

	if IsJSON() {
		return printJSON(cmd, rows)
	}
	if len(rows) == 0 {
		OutputLine(cmd, "No issues cached. Run 'vogonix issue sync' to fetch them.")
		return nil
	}

	table := newTable(cmd.OutOrStdout(), "Key", "Summary", "Status", "Logged", "Updated")
	for _, r := range rows {
		table.Append([]string{colorKey.Sprint(r.Key), r.Summary, r.Status, r.Tracked, r.Updated})
	}
	table.Render()
	return nil
}

type issueDetail struct {
	*models.Issue
	Timer *service.TimerStatus `json:"timer,omitempty"`
}

func runIssueShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	issue, err := a.issues.Get(args[0])
	if err != nil {
		return err
	}
	detail := issueDetail{Issue: issue}
	if st, err := a.timers.Get(issue.Key); err == nil {
		detail.Timer = st
	}

	if IsJSON() {
		return printJSON(cmd, detail)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  %s\n", colorKey.Sprint(issue.Key), colorHeader.Sprint(issue.Summary))
	if issue.Status != "" {
		fmt.Fprintf(out, "Status:   %s\n", issue.Status)
	}
	if issue.Assignee != "" {
		fmt.Fprintf(out, "Assignee: %s\n", issue.Assignee)
	}
	fmt.Fprintf(out, "Updated:  %s\n", formatAgo(issue.UpdatedAt))
	if issue.SyncedAt != nil {
		fmt.Fprintf(out, "Synced:   %s\n", formatAgo(*issue.SyncedAt))
	}
	fmt.Fprintf(out, "Logged:   %s\n", formatElapsed(issue.TimeSpent))
	if detail.Timer != nil {
		fmt.Fprintf(out, "Timer:    %s (%s)\n", formatElapsed(detail.Timer.Elapsed), formatState(detail.Timer.State))
	}

	if len(issue.WorkLogs) == 0 {
		return nil
	}
	fmt.Fprintln(out)
	printWorklogTable(cmd, issue.WorkLogs)
	return nil
}

func printWorklogTable(cmd *cobra.Command, worklogs []*models.Worklog) {
	table := newTable(cmd.OutOrStdout(), "Started", "Logged", "Author", "Comment")
	for _, w := range worklogs {
		table.Append([]string{formatAgo(w.StartedAt), formatElapsed(w.Duration), w.Author, w.Comment})
	}
	table.Render()
}
