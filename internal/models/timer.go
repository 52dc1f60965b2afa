package models

import "time"

// TimerState describes whether a timer is accumulating time.
type TimerState string

const (
	TimerStopped TimerState = "stopped"
	TimerRunning TimerState = "running"
	TimerPaused  TimerState = "paused"
)

// Timer tracks unsubmitted time for one issue. Elapsed time is the stored
// accumulation plus, while running, the time since RunningSince.
type Timer struct {
	IssueKey     string        `json:"issue_key"`
	Accumulated  time.Duration `json:"accumulated"`
	RunningSince *time.Time    `json:"running_since,omitempty"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Running reports whether the timer is accumulating time.
func (t *Timer) Running() bool {
	return t.RunningSince != nil
}

// State returns the timer state.
func (t *Timer) State() TimerState {
	switch {
	case t.Running():
		return TimerRunning
	case t.Accumulated > 0:
		return TimerPaused
	default:
		return TimerStopped
	}
}

// Elapsed returns the tracked time as of now. A clock that moved backwards
// contributes nothing.
func (t *Timer) Elapsed(now time.Time) time.Duration {
	elapsed := t.Accumulated
	if t.RunningSince != nil {
		if d := now.Sub(*t.RunningSince); d > 0 {
			elapsed += d
		}
	}
	return elapsed
}

// Start begins accumulating at now. It is a no-op when already running.
func (t *Timer) Start(now time.Time) {
	if t.RunningSince != nil {
		return
	}
	t.RunningSince = &now
	t.UpdatedAt = now
}

// Pause folds the running span into Accumulated.
func (t *Timer) Pause(now time.Time) {
	if t.RunningSince == nil {
		return
	}
	t.Accumulated = t.Elapsed(now)
	t.RunningSince = nil
	t.UpdatedAt = now
}
