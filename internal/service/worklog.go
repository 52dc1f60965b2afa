package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/gueldenstone/vogonix/internal/db"
	"github.com/gueldenstone/vogonix/internal/duration"
	werrors "github.com/gueldenstone/vogonix/internal/errors"
	"github.com/gueldenstone/vogonix/internal/models"
	"github.com/gueldenstone/vogonix/internal/state"
)

// WorklogService turns tracked timer time into tracker worklogs.
type WorklogService struct {
	timers      *TimerService
	issueRepo   *db.IssueRepo
	worklogRepo *db.WorklogRepo
	tracker     Tracker
	roundTo     time.Duration
	logger      *zap.Logger
	now         duration.Clock
}

// NewWorklogService creates a WorklogService. Tracked time is rounded to
// roundTo before submission; values below one minute mean one minute.
func NewWorklogService(database *sql.DB, timers *TimerService, tracker Tracker, roundTo time.Duration, logger *zap.Logger, now duration.Clock) *WorklogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if roundTo < time.Minute {
		roundTo = time.Minute
	}
	return &WorklogService{
		timers:      timers,
		issueRepo:   db.NewIssueRepo(database),
		worklogRepo: db.NewWorklogRepo(database),
		tracker:     tracker,
		roundTo:     roundTo,
		logger:      logger,
		now:         clockOrDefault(now),
	}
}

// Submit posts the tracked time of an issue as a worklog, records it
// locally and resets the timer.
func (s *WorklogService) Submit(ctx context.Context, rawKey, comment string) (*models.Worklog, error) {
	key, err := normalizeKey(rawKey)
	if err != nil {
		return nil, err
	}
	if s.tracker == nil {
		return nil, werrors.StateError("issue tracker not configured").
			WithSuggestion("Set [jira] url, user and token in ~/.vogonix/config.toml.")
	}

	timer, err := s.timers.Get(key)
	if err != nil {
		if werrors.Is(err, werrors.KindNotFound) {
			return nil, werrors.StateError("no time tracked for %s", key).
				WithSuggestion("Run 'vogonix timer start " + key + "' first.")
		}
		return nil, err
	}
	if !state.CanApply(timer.State, state.ActionSubmit) {
		return nil, werrors.StateError("no time tracked for %s", key)
	}

	tracked := timer.Elapsed
	spent := tracked.Round(s.roundTo)
	if spent <= 0 {
		return nil, werrors.StateError("nothing to submit for %s: %s tracked", key, duration.MustFormat(tracked))
	}

	now := s.now()
	started := now.Add(-spent)

	remoteID, err := s.tracker.AddWorklog(ctx, key, started, spent, comment)
	if err != nil {
		return nil, werrors.WrapRemote(err, "failed to submit worklog for %s", key)
	}
	if remoteID == "" {
		// Without an id the next sync could not replace the local copy.
		return nil, werrors.Internal("issue tracker returned no worklog id for %s", key).
			WithSuggestion("Run 'vogonix issue sync' to check whether the worklog was recorded.")
	}

	w := &models.Worklog{
		IssueKey:  key,
		RemoteID:  remoteID,
		Duration:  spent,
		Comment:   comment,
		StartedAt: started,
		UpdatedAt: now,
		Submitted: true,
	}
	if err := s.issueRepo.EnsureExists(key, now); err != nil {
		return nil, werrors.WrapInternal(err, "failed to record worklog for %s", key)
	}
	if err := s.worklogRepo.Create(w); err != nil {
		return nil, werrors.WrapInternal(err, "failed to record worklog for %s", key)
	}
	if err := s.timers.Reset(key); err != nil {
		return nil, err
	}

	s.logger.Info("worklog submitted",
		zap.String("issue", key),
		zap.Duration("tracked", tracked),
		zap.Duration("submitted", spent),
		zap.String("remote_id", remoteID))
	return w, nil
}

// List returns the worklogs of an issue, oldest first.
func (s *WorklogService) List(rawKey string) ([]*models.Worklog, error) {
	key, err := normalizeKey(rawKey)
	if err != nil {
		return nil, err
	}
	worklogs, err := s.worklogRepo.ListByIssue(key)
	if err != nil {
		return nil, werrors.WrapInternal(err, "failed to list worklogs of %s", key)
	}
	return worklogs, nil
}
