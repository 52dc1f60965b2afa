package cli

import (
	"time"

	"go.uber.org/zap"

	"github.com/gueldenstone/vogonix/internal/db"
	werrors "github.com/gueldenstone/vogonix/internal/errors"
	"github.com/gueldenstone/vogonix/internal/jira"
	"github.com/gueldenstone/vogonix/internal/service"
)

// app bundles the services a command needs.
type app struct {
	db       *db.DB
	issues   *service.IssueService
	timers   *service.TimerService
	worklogs *service.WorklogService
}

// newTracker builds the issue tracker client, or returns nil when Jira is
// not configured. Tests replace it.
var newTracker = func() (service.Tracker, error) {
	cfg := GetConfig().Jira
	if !cfg.Configured() {
		return nil, nil
	}
	client, err := jira.New(cfg.URL, cfg.User, cfg.Token, logger.Named("jira"))
	if err != nil {
		return nil, werrors.Wrap(err, werrors.KindInvalidArgs, "invalid jira configuration").
			WithSuggestion(SuggestConfigureJira)
	}
	return client, nil
}

// openApp opens the database, which must already exist, and wires the
// services. The caller closes the app.
func openApp() (*app, error) {
	path := GetDBPath()
	if !db.Exists(path) {
		return nil, werrors.NotFound("database not found at %s", db.ResolvePath(path)).
			WithSuggestion(SuggestRunInit)
	}

	database, err := db.OpenMigrated(path)
	if err != nil {
		return nil, werrors.WrapInternal(err, "failed to open database")
	}

	tracker, err := newTracker()
	if err != nil {
		database.Close()
		return nil, err
	}

	roundTo := time.Duration(GetConfig().Timer.RoundToMinutes) * time.Minute
	timers := service.NewTimerService(database.DB, logger.Named("timer"), now)
	a := &app{
		db:       database,
		issues:   service.NewIssueService(database.DB, tracker, logger.Named("issue"), now),
		timers:   timers,
		worklogs: service.NewWorklogService(database.DB, timers, tracker, roundTo, logger.Named("worklog"), now),
	}
	logger.Debug("opened database", zap.String("path", database.Path()), zap.Bool("tracker", tracker != nil))
	return a, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
