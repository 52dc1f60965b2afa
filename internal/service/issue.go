package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/gueldenstone/vogonix/internal/db"
	"github.com/gueldenstone/vogonix/internal/duration"
	werrors "github.com/gueldenstone/vogonix/internal/errors"
	"github.com/gueldenstone/vogonix/internal/models"
)

// SuggestSync is shown when an issue is missing from the local cache.
const SuggestSync = "Run 'vogonix issue sync' to refresh assigned issues."

// IssueService keeps the local issue cache in step with the tracker.
type IssueService struct {
	issueRepo   *db.IssueRepo
	worklogRepo *db.WorklogRepo
	tracker     Tracker
	logger      *zap.Logger
	now         duration.Clock
}

// NewIssueService creates an IssueService. tracker may be nil, in which case
// every sync runs offline.
func NewIssueService(database *sql.DB, tracker Tracker, logger *zap.Logger, now duration.Clock) *IssueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssueService{
		issueRepo:   db.NewIssueRepo(database),
		worklogRepo: db.NewWorklogRepo(database),
		tracker:     tracker,
		logger:      logger,
		now:         clockOrDefault(now),
	}
}

// SyncResult reports the outcome of a sync.
type SyncResult struct {
	Fetched int    `json:"fetched"`
	Offline bool   `json:"offline"`
	Reason  string `json:"reason,omitempty"`
}

// Sync fetches assigned issues and their worklogs and stores them. When the
// tracker is unavailable the cache is left untouched and the result is
// marked offline; that is not an error.
func (s *IssueService) Sync(ctx context.Context) (*SyncResult, error) {
	if s.tracker == nil {
		return &SyncResult{Offline: true, Reason: "issue tracker not configured"}, nil
	}

	remote, err := s.tracker.AssignedIssues(ctx)
	if err != nil {
		s.logger.Warn("issue tracker unreachable, using cached issues", zap.Error(err))
		return &SyncResult{Offline: true, Reason: err.Error()}, nil
	}

	syncedAt := s.now()
	for _, issue := range remote {
		issue.SyncedAt = &syncedAt
		if issue.UpdatedAt.IsZero() {
			issue.UpdatedAt = syncedAt
		}
		if err := s.issueRepo.Upsert(issue); err != nil {
			return nil, werrors.WrapInternal(err, "failed to store issue %s", issue.Key)
		}
		if err := s.worklogRepo.ReplaceRemote(issue.Key, issue.WorkLogs); err != nil {
			return nil, werrors.WrapInternal(err, "failed to store worklogs of %s", issue.Key)
		}
		s.logger.Debug("synced issue", zap.String("issue", issue.Key), zap.Int("worklogs", len(issue.WorkLogs)))
	}

	return &SyncResult{Fetched: len(remote)}, nil
}

// Assigned syncs and then returns the cached issues, whether or not the
// tracker could be reached.
func (s *IssueService) Assigned(ctx context.Context) ([]*models.Issue, *SyncResult, error) {
	result, err := s.Sync(ctx)
	if err != nil {
		return nil, nil, err
	}
	issues, err := s.List()
	if err != nil {
		return nil, nil, err
	}
	return issues, result, nil
}

// List returns all cached issues with worklogs and time spent filled in.
func (s *IssueService) List() ([]*models.Issue, error) {
	issues, err := s.issueRepo.List()
	if err != nil {
		return nil, werrors.WrapInternal(err, "failed to list issues")
	}
	for _, issue := range issues {
		if err := s.attachWorklogs(issue); err != nil {
			return nil, err
		}
	}
	return issues, nil
}

// Get returns one cached issue with its worklogs.
func (s *IssueService) Get(rawKey string) (*models.Issue, error) {
	key, err := normalizeKey(rawKey)
	if err != nil {
		return nil, err
	}

	issue, err := s.issueRepo.GetByKey(key)
	if err != nil {
		return nil, werrors.WrapInternal(err, "failed to get issue %s", key)
	}
	if issue == nil {
		return nil, werrors.NotFound("issue %s not found", key).WithSuggestion(SuggestSync)
	}
	if err := s.attachWorklogs(issue); err != nil {
		return nil, err
	}
	return issue, nil
}

func (s *IssueService) attachWorklogs(issue *models.Issue) error {
	worklogs, err := s.worklogRepo.ListByIssue(issue.Key)
	if err != nil {
		return werrors.WrapInternal(err, "failed to list worklogs of %s", issue.Key)
	}
	issue.WorkLogs = worklogs
	issue.TimeSpent = models.WorkLogs(worklogs).Total()
	return nil
}
