// Package state implements the timer state machine for vogonix.
package state

import (
	"fmt"

	"github.com/gueldenstone/vogonix/internal/models"
)

// Action is something a user does to a timer.
type Action string

const (
	ActionStart  Action = "start"
	ActionPause  Action = "pause"
	ActionReset  Action = "reset"
	ActionSubmit Action = "submit"
)

// TransitionRule defines a valid timer transition.
type TransitionRule struct {
	From        models.TimerState
	Action      Action
	To          models.TimerState
	Description string
}

// validTransitions defines all valid timer transitions.
var validTransitions = []TransitionRule{
	// stopped → running
	{
		From:        models.TimerStopped,
		Action:      ActionStart,
		To:          models.TimerRunning,
		Description: "Timer started",
	},

	// paused → running (resume)
	{
		From:        models.TimerPaused,
		Action:      ActionStart,
		To:          models.TimerRunning,
		Description: "Timer resumed",
	},

	// running → paused
	{
		From:        models.TimerRunning,
		Action:      ActionPause,
		To:          models.TimerPaused,
		Description: "Timer paused, tracked time kept",
	},

	// running/paused → stopped (submit)
	{
		From:        models.TimerRunning,
		Action:      ActionSubmit,
		To:          models.TimerStopped,
		Description: "Tracked time submitted as a worklog",
	},
	{
		From:        models.TimerPaused,
		Action:      ActionSubmit,
		To:          models.TimerStopped,
		Description: "Tracked time submitted as a worklog",
	},

	// * → stopped (reset)
	{
		From:        models.TimerStopped,
		Action:      ActionReset,
		To:          models.TimerStopped,
		Description: "Nothing tracked, reset is a no-op",
	},
	{
		From:        models.TimerRunning,
		Action:      ActionReset,
		To:          models.TimerStopped,
		Description: "Tracked time discarded",
	},
	{
		From:        models.TimerPaused,
		Action:      ActionReset,
		To:          models.TimerStopped,
		Description: "Tracked time discarded",
	},
}

type transitionKey struct {
	from   models.TimerState
	action Action
}

var transitionMap map[transitionKey]*TransitionRule

func init() {
	transitionMap = make(map[transitionKey]*TransitionRule, len(validTransitions))
	for i := range validTransitions {
		r := &validTransitions[i]
		transitionMap[transitionKey{r.From, r.Action}] = r
	}
}

// TransitionError reports an action that is not valid in the current state.
type TransitionError struct {
	From   models.TimerState
	Action Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a %s timer", e.Action, e.From)
}

// Next returns the state a timer in from moves to on action.
func Next(from models.TimerState, action Action) (models.TimerState, error) {
	r, ok := transitionMap[transitionKey{from, action}]
	if !ok {
		return from, &TransitionError{From: from, Action: action}
	}
	return r.To, nil
}

// CanApply reports whether action is valid in state from.
func CanApply(from models.TimerState, action Action) bool {
	_, ok := transitionMap[transitionKey{from, action}]
	return ok
}

// ValidActions returns the actions available in state from, reset last.
func ValidActions(from models.TimerState) []Action {
	var actions []Action
	for _, a := range []Action{ActionStart, ActionPause, ActionSubmit, ActionReset} {
		if CanApply(from, a) {
			actions = append(actions, a)
		}
	}
	return actions
}
