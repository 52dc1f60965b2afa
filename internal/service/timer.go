package service

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/gueldenstone/vogonix/internal/db"
	"github.com/gueldenstone/vogonix/internal/duration"
	werrors "github.com/gueldenstone/vogonix/internal/errors"
	"github.com/gueldenstone/vogonix/internal/models"
	"github.com/gueldenstone/vogonix/internal/state"
)

// TimerService runs per-issue timers. Timers persist as an accumulated
// duration plus an optional running-since instant, so a timer keeps running
// between invocations of the CLI.
type TimerService struct {
	timerRepo *db.TimerRepo
	logger    *zap.Logger
	now       duration.Clock
}

// NewTimerService creates a TimerService reading time from now.
func NewTimerService(database *sql.DB, logger *zap.Logger, now duration.Clock) *TimerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimerService{
		timerRepo: db.NewTimerRepo(database),
		logger:    logger,
		now:       clockOrDefault(now),
	}
}

// TimerStatus is a timer with its elapsed time evaluated at one instant.
type TimerStatus struct {
	*models.Timer
	State   models.TimerState `json:"state"`
	Elapsed time.Duration     `json:"elapsed"`
	Actions []state.Action    `json:"actions"`
}

func (s *TimerService) status(t *models.Timer, now time.Time) *TimerStatus {
	st := t.State()
	return &TimerStatus{Timer: t, State: st, Elapsed: t.Elapsed(now), Actions: state.ValidActions(st)}
}

// Start starts a new timer or resumes a paused one.
func (s *TimerService) Start(rawKey string) (*TimerStatus, error) {
	key, err := normalizeKey(rawKey)
	if err != nil {
		return nil, err
	}

	t, err := s.timerRepo.Get(key)
	if err != nil {
		return nil, werrors.WrapInternal(err, "failed to load timer for %s", key)
	}
	if t == nil {
		t = &models.Timer{IssueKey: key}
	}
	if !state.CanApply(t.State(), state.ActionStart) {
		return nil, werrors.StateError("timer for %s is already running", key).
			WithSuggestion("Run 'vogonix timer pause " + key + "' to pause it.")
	}

	now := s.now()
	t.Start(now)
	if err := s.timerRepo.Save(t); err != nil {
		return nil, werrors.WrapInternal(err, "failed to save timer for %s", key)
	}

	s.logger.Debug("timer started", zap.String("issue", key), zap.Duration("accumulated", t.Accumulated))
	return s.status(t, now), nil
}

// Pause stops a running timer, keeping the time tracked so far.
func (s *TimerService) Pause(rawKey string) (*TimerStatus, error) {
	key, err := normalizeKey(rawKey)
	if err != nil {
		return nil, err
	}

	t, err := s.timerRepo.Get(key)
	if err != nil {
		return nil, werrors.WrapInternal(err, "failed to load timer for %s", key)
	}
	if t == nil {
		return nil, werrors.NotFound("no timer for %s", key)
	}
	if _, err := state.Next(t.State(), state.ActionPause); err != nil {
		return nil, werrors.Wrap(err, werrors.KindStateError, "timer for %s is not running", key)
	}

	now := s.now()
	t.Pause(now)
	if err := s.timerRepo.Save(t); err != nil {
		return nil, werrors.WrapInternal(err, "failed to save timer for %s", key)
	}

	s.logger.Debug("timer paused", zap.String("issue", key), zap.Duration("accumulated", t.Accumulated))
	return s.status(t, now), nil
}

// Reset discards the tracked time of an issue. Resetting an issue without
// a timer succeeds.
func (s *TimerService) Reset(rawKey string) error {
	key, err := normalizeKey(rawKey)
	if err != nil {
		return err
	}
	if err := s.timerRepo.Delete(key); err != nil {
		return werrors.WrapInternal(err, "failed to reset timer for %s", key)
	}
	s.logger.Debug("timer reset", zap.String("issue", key))
	return nil
}

// Current returns the tracked time of an issue, zero when it has no timer.
func (s *TimerService) Current(rawKey string) (time.Duration, error) {
	st, err := s.Get(rawKey)
	if err != nil {
		if werrors.Is(err, werrors.KindNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return st.Elapsed, nil
}

// Get returns the status of one timer.
func (s *TimerService) Get(rawKey string) (*TimerStatus, error) {
	key, err := normalizeKey(rawKey)
	if err != nil {
		return nil, err
	}
	t, err := s.timerRepo.Get(key)
	if err != nil {
		return nil, werrors.WrapInternal(err, "failed to load timer for %s", key)
	}
	if t == nil {
		return nil, werrors.NotFound("no timer for %s", key)
	}
	return s.status(t, s.now()), nil
}

// List returns the status of every timer, evaluated at the same instant.
func (s *TimerService) List() ([]*TimerStatus, error) {
	timers, err := s.timerRepo.List()
	if err != nil {
		return nil, werrors.WrapInternal(err, "failed to list timers")
	}
	now := s.now()
	out := make([]*TimerStatus, 0, len(timers))
	for _, t := range timers {
		out = append(out, s.status(t, now))
	}
	return out, nil
}
