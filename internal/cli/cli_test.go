package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gueldenstone/vogonix/internal/models"
	"github.com/gueldenstone/vogonix/internal/service"
)

var cliStart = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type fakeTracker struct {
	issues    []*models.Issue
	err       error
	submitted []time.Duration
}

func (f *fakeTracker) AssignedIssues(ctx context.Context) ([]*models.Issue, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.issues, nil
}

func (f *fakeTracker) AddWorklog(ctx context.Context, key string, started time.Time, d time.Duration, comment string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.submitted = append(f.submitted, d)
	return "9001", nil
}

// testEnv isolates a CLI run: a fresh HOME, a database path in a temp dir,
// a settable clock and a fake tracker.
type testEnv struct {
	t       *testing.T
	dbPath  string
	clock   time.Time
	tracker *fakeTracker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("VOGONIX_BACKUP_ENABLED", "false")
	t.Setenv("VOGONIX_NO_COLOR", "true")

	env := &testEnv{
		t:       t,
		dbPath:  filepath.Join(home, "data", "vogonix.db"),
		clock:   cliStart,
		tracker: &fakeTracker{},
	}

	oldNow, oldTracker := now, newTracker
	now = func() time.Time { return env.clock }
	newTracker = func() (service.Tracker, error) { return env.tracker, nil }
	t.Cleanup(func() {
		now, newTracker = oldNow, oldTracker
	})
	return env
}

// resetGlobalFlags resets all global CLI flags to their default values.
// Cobra keeps flag state between Execute calls.
func resetGlobalFlags() {
	dbPath = ""
	jsonOut = false
	quiet = false
	verbose = false
	noColor = false
	initForce = false
	durationNanos = false
	worklogComment = ""
	issueListSync = false
	issueListProject = ""
}

// run executes the root command with args and the env's database.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	return executeCommand(append([]string{"--db", e.dbPath}, args...)...)
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, out)
	return out
}

func executeCommand(args ...string) (string, error) {
	resetGlobalFlags()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestDurationCommand(t *testing.T) {
	newTestEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"seconds", []string{"duration", "3661"}, "1h 1m 1s\n"},
		{"zero", []string{"duration", "0"}, "0s\n"},
		{"week", []string{"duration", "694861"}, "1w 1d 1h 1m 1s\n"},
		{"nanoseconds", []string{"duration", "--ns", "90000000000"}, "1m 30s\n"},
		{"sub-second nanoseconds", []string{"duration", "--ns", "999999999"}, "0s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestDurationCommand_Errors(t *testing.T) {
	newTestEnv(t)

	_, err := executeCommand("duration", "--", "-5")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArgs, ExitCode(err))
	assert.Contains(t, err.Error(), "negative")

	_, err = executeCommand("duration", "ten")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArgs, ExitCode(err))
}

func TestDurationCommand_JSON(t *testing.T) {
	newTestEnv(t)

	out, err := executeCommand("duration", "--json", "31536000")
	require.NoError(t, err)

	var result durationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, int64(31536000), result.Input)
	assert.Equal(t, "s", result.Unit)
	assert.Equal(t, "1y", result.Formatted)
}

func TestAgoCommand(t *testing.T) {
	newTestEnv(t)

	tests := []struct {
		ts   string
		want string
	}{
		{"2024-03-15T11:59:30Z", "just now\n"},
		{"2024-03-15T09:00:00Z", "3h ago\n"},
		{"2024-03-15T09:00:00.000+0000", "3h ago\n"},
		{"2024-03-01", "2w ago\n"},
		{"2023-03-15 12:00:00", "1y ago\n"},
	}
	for _, tt := range tests {
		t.Run(tt.ts, func(t *testing.T) {
			out, err := executeCommand("ago", tt.ts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	_, err := executeCommand("ago", "2024-03-15T13:00:00Z")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArgs, ExitCode(err))

	_, err = executeCommand("ago", "last tuesday")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArgs, ExitCode(err))
}

func TestInitCommand(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("init")
	assert.Contains(t, out, "Initialized vogonix database at "+env.dbPath)
	assert.Contains(t, out, "Wrote sample config")
	_, err := os.Stat(filepath.Join(os.Getenv("HOME"), ".vogonix", "config.toml"))
	require.NoError(t, err)

	_, err = env.run("init")
	require.Error(t, err)
	assert.Equal(t, ExitStateError, ExitCode(err))
	assert.Contains(t, FormatErrorMessage(err), "--force")

	out = env.mustRun("init", "--force", "--json")
	var result initResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Created)
	assert.False(t, result.ConfigCreated)
	assert.Equal(t, int64(1), result.Schema)
}

func TestCommandsRequireInit(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("issue", "list")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCode(err))
	assert.Contains(t, FormatErrorMessage(err), "vogonix init")
}

func TestTimerWorkflow(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")

	out := env.mustRun("timer", "start", "proj-1")
	assert.Contains(t, out, "Started PROJ-1 at 0s")

	_, err := env.run("timer", "start", "PROJ-1")
	require.Error(t, err)
	assert.Equal(t, ExitStateError, ExitCode(err))

	env.clock = env.clock.Add(42 * time.Minute)
	out = env.mustRun("timer", "pause", "PROJ-1")
	assert.Contains(t, out, "Paused PROJ-1 at 42m")

	out = env.mustRun("timer", "status", "--json")
	var timers []struct {
		IssueKey string        `json:"issue_key"`
		State    string        `json:"state"`
		Elapsed  time.Duration `json:"elapsed"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &timers))
	require.Len(t, timers, 1)
	assert.Equal(t, "PROJ-1", timers[0].IssueKey)
	assert.Equal(t, "paused", timers[0].State)
	assert.Equal(t, 42*time.Minute, timers[0].Elapsed)

	out = env.mustRun("timer", "status")
	assert.Contains(t, out, "PROJ-1")
	assert.Contains(t, out, "42m")

	_, err = env.run("timer", "status", "PROJ-2")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCode(err))

	_, err = env.run("timer", "start", "not-a-key!")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArgs, ExitCode(err))

	env.mustRun("timer", "reset", "PROJ-1")
	out = env.mustRun("timer", "status")
	assert.Contains(t, out, "No timers")
}

func TestWorklogSubmit(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")
	env.mustRun("timer", "start", "PROJ-7")
	env.clock = env.clock.Add(90*time.Minute + 20*time.Second)

	out := env.mustRun("worklog", "submit", "PROJ-7", "-m", "wrote poetry")
	assert.Contains(t, out, "Logged 1h 30m on PROJ-7")
	assert.Equal(t, []time.Duration{90 * time.Minute}, env.tracker.submitted)

	out = env.mustRun("worklog", "list", "PROJ-7", "--json")
	var worklogs []*models.Worklog
	require.NoError(t, json.Unmarshal([]byte(out), &worklogs))
	require.Len(t, worklogs, 1)
	assert.Equal(t, "wrote poetry", worklogs[0].Comment)
	assert.Equal(t, "9001", worklogs[0].RemoteID)

	_, err := env.run("worklog", "submit", "PROJ-7")
	require.Error(t, err)
	assert.Equal(t, ExitStateError, ExitCode(err))
}

func TestWorklogSubmit_RemoteFailure(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")
	env.mustRun("timer", "start", "PROJ-7")
	env.clock = env.clock.Add(10 * time.Minute)

	env.tracker.err = errors.New("503 service unavailable")
	_, err := env.run("worklog", "submit", "PROJ-7")
	require.Error(t, err)
	assert.Equal(t, ExitRemoteError, ExitCode(err))

	out := env.mustRun("timer", "status", "PROJ-7")
	assert.Contains(t, out, "10m")
}

func TestIssueCommands(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")
	env.tracker.issues = []*models.Issue{{
		Key:       "PROJ-3",
		Summary:   "Demolish Earth",
		Status:    "In Progress",
		UpdatedAt: cliStart.Add(-2 * 24 * time.Hour),
		WorkLogs: []*models.Worklog{
			{RemoteID: "1", Duration: time.Hour, Author: "Jeltz", UpdatedAt: cliStart.Add(-time.Hour)},
		},
	}}

	out := env.mustRun("issue", "sync")
	assert.Contains(t, out, "Synced 1 issue(s)")

	out = env.mustRun("issue", "list")
	assert.Contains(t, out, "PROJ-3")
	assert.Contains(t, out, "Demolish Earth")
	assert.Contains(t, out, "2d ago")

	out = env.mustRun("issue", "show", "PROJ-3", "--json")
	var detail struct {
		Key       string        `json:"key"`
		TimeSpent time.Duration `json:"time_spent"`
		WorkLogs  []interface{} `json:"worklogs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &detail))
	assert.Equal(t, "PROJ-3", detail.Key)
	assert.Equal(t, time.Hour, detail.TimeSpent)
	assert.Len(t, detail.WorkLogs, 1)

	_, err := env.run("issue", "show", "PROJ-404")
	require.Error(t, err)
	assert.Equal(t, ExitNotFound, ExitCode(err))
}

func TestIssueSync_Offline(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")
	env.tracker.err = errors.New("dial tcp: no route to host")

	out, err := env.run("issue", "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "Offline")
	assert.Contains(t, out, "Local cache left unchanged")

	out = env.mustRun("issue", "sync", "--json")
	var result service.SyncResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Offline)
}

func TestAutoBackup(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")
	t.Setenv("VOGONIX_BACKUP_ENABLED", "true")

	env.mustRun("timer", "status")
	_, err := os.Stat(env.dbPath + ".bak.1")
	require.NoError(t, err)
}

func TestFormatErrorMessage(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")

	_, err := env.run("issue", "show", "PROJ-1")
	require.Error(t, err)
	msg := FormatErrorMessage(err)
	assert.Contains(t, msg, "Error: issue PROJ-1 not found")
	assert.Contains(t, msg, "Suggestion: Run 'vogonix issue sync'")

	assert.Equal(t, "Error: boom", FormatErrorMessage(errors.New("boom")))
	assert.Equal(t, ExitGeneralError, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitSuccess, ExitCode(nil))
}

func TestIssueList_SyncAndProject(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")
	env.tracker.issues = []*models.Issue{
		{Key: "PROJ-1", Summary: "Build the bypass", UpdatedAt: cliStart.Add(-time.Hour)},
		{Key: "OPS-4", Summary: "File the forms", UpdatedAt: cliStart.Add(-time.Hour)},
	}

	out := env.mustRun("issue", "list")
	assert.Contains(t, out, "No issues cached")

	out = env.mustRun("issue", "list", "--sync")
	assert.Contains(t, out, "PROJ-1")
	assert.Contains(t, out, "OPS-4")

	out = env.mustRun("issue", "list", "--project", "proj", "--json")
	var rows []struct {
		Key string `json:"key"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "PROJ-1", rows[0].Key)

	// Offline: the cached issues are still listed.
	env.tracker.err = errors.New("dial tcp: no route to host")
	out = env.mustRun("issue", "list", "--sync")
	assert.Contains(t, out, "Showing cached issues")
	assert.Contains(t, out, "PROJ-1")
}

func TestFormatAgo_FutureTimestampLogged(t *testing.T) {
	newTestEnv(t)
	core, logs := observer.New(zap.DebugLevel)
	oldLogger := logger
	logger = zap.New(core)
	t.Cleanup(func() { logger = oldLogger })

	assert.Equal(t, "never", formatAgo(time.Time{}))
	assert.Equal(t, "2h ago", formatAgo(cliStart.Add(-2*time.Hour)))
	assert.Equal(t, 0, logs.Len())

	assert.Equal(t, "just now", formatAgo(cliStart.Add(5*time.Minute)))
	assert.Equal(t, 1, logs.FilterMessage("timestamp ahead of local clock").Len())
}
