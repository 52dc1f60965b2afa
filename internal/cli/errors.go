package cli

import (
	"errors"
	"strings"

	werrors "github.com/gueldenstone/vogonix/internal/errors"
)

// Exit codes. They mirror the error kinds in internal/errors.
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitNotFound     = 3
	ExitStateError   = 4
	ExitDBError      = 5
	ExitRemoteError  = 7
)

// Common suggestions
const (
	SuggestRunInit       = "Run 'vogonix init' to create a new database."
	SuggestConfigureJira = "Set [jira] url, user and token in ~/.vogonix/config.toml or VOGONIX_JIRA_* variables."
	SuggestTimerStatus   = "Run 'vogonix timer status' to see all timers."
)

// ExitCode returns the exit code for any error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return werrors.GetCLIExitCode(err)
}

// FormatErrorMessage returns the error with its suggestion, if any.
func FormatErrorMessage(err error) string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(err.Error())

	var e *werrors.Error
	if errors.As(err, &e) && e.Suggestion != "" {
		b.WriteString("\n\nSuggestion: ")
		b.WriteString(e.Suggestion)
	}
	return b.String()
}
