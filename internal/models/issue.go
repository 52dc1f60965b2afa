// Package models defines the domain models for vogonix.
package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidIssueKey is returned when an issue key doesn't match PROJECT-NUMBER.
var ErrInvalidIssueKey = errors.New("invalid issue key format (expected PROJECT-NUMBER)")

var issueKeyRegex = regexp.MustCompile(`^[A-Z][A-Z0-9]*-\d+$`)

// Issue is an issue assigned to the current user, cached from the tracker.
type Issue struct {
	Key       string     `json:"key"`
	Summary   string     `json:"summary,omitempty"`
	Assignee  string     `json:"assignee,omitempty"`
	Status    string     `json:"status,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
	SyncedAt  *time.Time `json:"synced_at,omitempty"`

	// Computed fields
	WorkLogs  []*Worklog    `json:"worklogs,omitempty"`
	TimeSpent time.Duration `json:"time_spent,omitempty"`
}

// NormalizeIssueKey upper-cases and validates an issue key.
func NormalizeIssueKey(key string) (string, error) {
	key = strings.ToUpper(strings.TrimSpace(key))
	if !issueKeyRegex.MatchString(key) {
		return "", ErrInvalidIssueKey
	}
	return key, nil
}

// Validate validates the issue fields.
func (i *Issue) Validate() error {
	if !issueKeyRegex.MatchString(i.Key) {
		return ErrInvalidIssueKey
	}
	return nil
}

// ProjectKey returns the part of the key before the dash.
func (i *Issue) ProjectKey() string {
	if idx := strings.LastIndex(i.Key, "-"); idx > 0 {
		return i.Key[:idx]
	}
	return ""
}
