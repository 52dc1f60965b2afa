// Package jira talks to the Jira Cloud REST API: it fetches the issues
// assigned to the current user with their worklogs and posts new worklogs.
package jira

import (
	"context"
	"fmt"
	"time"

	v3 "github.com/ctreminiom/go-atlassian/jira/v3"
	"github.com/ctreminiom/go-atlassian/pkg/infra/models"
	"go.uber.org/zap"

	"github.com/gueldenstone/vogonix/internal/duration"
	vmodels "github.com/gueldenstone/vogonix/internal/models"
)

const (
	assignedJQL      = "assignee = currentUser() AND status NOT IN ('Done') ORDER BY created DESC"
	maxIssues        = 50
	maxWorklogs      = 1000
	defaultTimeout   = 10 * time.Second
	adjustLeaveAlone = "leave"
)

var issueFields = []string{"status", "worklog", "assignee", "summary", "updated"}

// Client is a Jira client scoped to one user.
type Client struct {
	api     *v3.Client
	logger  *zap.Logger
	timeout time.Duration
}

// New creates a client for the site at url using basic auth.
func New(url, user, token string, logger *zap.Logger) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("jira url is required")
	}
	api, err := v3.New(nil, url)
	if err != nil {
		return nil, fmt.Errorf("create jira client: %w", err)
	}
	api.Auth.SetBasicAuth(user, token)

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{api: api, logger: logger, timeout: defaultTimeout}, nil
}

// BaseURL returns the site the client talks to.
func (c *Client) BaseURL() string {
	return c.api.Site.String()
}

// AssignedIssues returns the open issues assigned to the current user,
// each with its worklogs. A failure to load one issue's worklogs is logged
// and leaves that issue without worklogs.
func (c *Client) AssignedIssues(ctx context.Context) ([]*vmodels.Issue, error) {
	searchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, _, err := c.api.Issue.Search.Get(searchCtx, assignedJQL, issueFields, nil, 0, maxIssues, "")
	if err != nil {
		return nil, fmt.Errorf("search assigned issues: %w", err)
	}

	issues := make([]*vmodels.Issue, 0, len(result.Issues))
	for _, remote := range result.Issues {
		issue := convertIssue(remote)
		if issue == nil {
			continue
		}
		worklogs, err := c.worklogs(ctx, issue.Key)
		if err != nil {
			c.logger.Warn("failed to fetch worklogs", zap.String("issue", issue.Key), zap.Error(err))
		}
		issue.WorkLogs = worklogs
		issue.TimeSpent = vmodels.WorkLogs(worklogs).Total()
		issues = append(issues, issue)
	}
	return issues, nil
}

func (c *Client) worklogs(ctx context.Context, issueKey string) ([]*vmodels.Worklog, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	page, _, err := c.api.Issue.Worklog.Issue(ctx, issueKey, 0, maxWorklogs, 0, []string{"all"})
	if err != nil {
		return nil, fmt.Errorf("list worklogs for %s: %w", issueKey, err)
	}
	return c.convertWorklogs(issueKey, page.Worklogs), nil
}

// AddWorklog logs d against issueKey, started at started, and returns the
// remote worklog id.
func (c *Client) AddWorklog(ctx context.Context, issueKey string, started time.Time, d time.Duration, comment string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	options := &models.WorklogOptionsScheme{
		Notify:         false,
		AdjustEstimate: adjustLeaveAlone,
	}
	payload := &models.WorklogADFPayloadScheme{
		Started:          started.Format(duration.JiraTimeLayout),
		TimeSpentSeconds: int(d / time.Second),
		Comment:          commentPayload(comment),
	}

	c.logger.Debug("submitting worklog",
		zap.String("issue", issueKey),
		zap.Duration("duration", d),
		zap.String("started", payload.Started))

	created, _, err := c.api.Issue.Worklog.Add(ctx, issueKey, payload, options)
	if err != nil {
		return "", fmt.Errorf("add worklog to %s: %w", issueKey, err)
	}
	if created == nil || created.ID == "" {
		return "", fmt.Errorf("add worklog to %s: response carried no worklog id", issueKey)
	}
	return created.ID, nil
}

func convertIssue(remote *models.IssueScheme) *vmodels.Issue {
	if remote == nil || remote.Key == "" {
		return nil
	}
	issue := &vmodels.Issue{Key: remote.Key}
	if f := remote.Fields; f != nil {
		issue.Summary = f.Summary
		if f.Assignee != nil {
			issue.Assignee = f.Assignee.DisplayName
		}
		if f.Status != nil {
			issue.Status = f.Status.Name
		}
		if t, err := duration.ParseTimestamp(f.Updated); err == nil {
			issue.UpdatedAt = t
		}
	}
	return issue
}

// convertWorklogs maps remote worklogs, skipping entries whose time spent or
// update timestamp cannot be parsed.
func (c *Client) convertWorklogs(issueKey string, remote []*models.IssueWorklogADFScheme) []*vmodels.Worklog {
	worklogs := make([]*vmodels.Worklog, 0, len(remote))
	for _, r := range remote {
		if r == nil {
			continue
		}
		w, err := convertWorklog(issueKey, r)
		if err != nil {
			c.logger.Warn("skipping worklog", zap.String("issue", issueKey), zap.String("id", r.ID), zap.Error(err))
			continue
		}
		worklogs = append(worklogs, w)
	}
	vmodels.SortByUpdated(worklogs)
	return worklogs
}

func convertWorklog(issueKey string, r *models.IssueWorklogADFScheme) (*vmodels.Worklog, error) {
	spent, err := worklogDuration(r)
	if err != nil {
		return nil, err
	}
	updated, err := time.Parse(duration.JiraTimeLayout, r.Updated)
	if err != nil {
		return nil, fmt.Errorf("parse updated: %w", err)
	}
	started := updated
	if t, err := time.Parse(duration.JiraTimeLayout, r.Started); err == nil {
		started = t
	}

	w := &vmodels.Worklog{
		IssueKey:  issueKey,
		RemoteID:  r.ID,
		Duration:  spent,
		StartedAt: started,
		UpdatedAt: updated,
		Submitted: true,
	}
	if r.Author != nil {
		w.Author = r.Author.DisplayName
	}
	return w, nil
}

func worklogDuration(r *models.IssueWorklogADFScheme) (time.Duration, error) {
	if r.TimeSpentSeconds > 0 {
		return time.Duration(r.TimeSpentSeconds) * time.Second, nil
	}
	return duration.ParseTimeSpent(r.TimeSpent)
}

// commentPayload wraps plain text in a single-paragraph ADF document.
func commentPayload(text string) *models.CommentNodeScheme {
	if text == "" {
		return nil
	}
	return &models.CommentNodeScheme{
		Version: 1,
		Type:    "doc",
		Content: []*models.CommentNodeScheme{
			{
				Type: "paragraph",
				Content: []*models.CommentNodeScheme{
					{Type: "text", Text: text},
				},
			},
		},
	}
}
