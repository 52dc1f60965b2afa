package models

import (
	"fmt"
	"sort"
	"time"
)

// Worklog is a block of time logged against an issue, either fetched from
// the tracker or submitted from a local timer.
type Worklog struct {
	ID        int64         `json:"id"`
	IssueKey  string        `json:"issue_key"`
	RemoteID  string        `json:"remote_id,omitempty"`
	Duration  time.Duration `json:"duration"`
	Comment   string        `json:"comment,omitempty"`
	Author    string        `json:"author,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Submitted bool          `json:"submitted"`
}

// Validate validates the worklog fields.
func (w *Worklog) Validate() error {
	if !issueKeyRegex.MatchString(w.IssueKey) {
		return ErrInvalidIssueKey
	}
	if w.Duration < 0 {
		return fmt.Errorf("worklog duration cannot be negative")
	}
	return nil
}

// WorkLogs sorts oldest update first.
type WorkLogs []*Worklog

func (wls WorkLogs) Len() int           { return len(wls) }
func (wls WorkLogs) Swap(i, j int)      { wls[i], wls[j] = wls[j], wls[i] }
func (wls WorkLogs) Less(i, j int) bool { return wls[i].UpdatedAt.Before(wls[j].UpdatedAt) }

// SortByUpdated sorts worklogs in place, oldest first.
func SortByUpdated(wls []*Worklog) {
	sort.Stable(WorkLogs(wls))
}

// Total sums the durations of all worklogs.
func (wls WorkLogs) Total() time.Duration {
	var total time.Duration
	for _, w := range wls {
		total += w.Duration
	}
	return total
}
