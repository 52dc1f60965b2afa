// Package service provides the time-logging operations behind the vogonix
// CLI: syncing assigned issues, running timers and submitting worklogs.
package service

import (
	"context"
	"time"

	"github.com/gueldenstone/vogonix/internal/duration"
	werrors "github.com/gueldenstone/vogonix/internal/errors"
	"github.com/gueldenstone/vogonix/internal/models"
)

// Tracker is the remote issue tracker. *jira.Client implements it.
type Tracker interface {
	AssignedIssues(ctx context.Context) ([]*models.Issue, error)
	AddWorklog(ctx context.Context, issueKey string, started time.Time, d time.Duration, comment string) (string, error)
}

func clockOrDefault(now duration.Clock) duration.Clock {
	if now == nil {
		return time.Now
	}
	return now
}

func normalizeKey(raw string) (string, error) {
	key, err := models.NormalizeIssueKey(raw)
	if err != nil {
		return "", werrors.InvalidArgs("%v: %q", err, raw).
			WithSuggestion("Issue keys look like PROJECT-123.")
	}
	return key, nil
}
