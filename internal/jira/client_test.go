package jira

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ctreminiom/go-atlassian/pkg/infra/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observedClient() (*Client, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &Client{logger: zap.New(core), timeout: time.Second}, logs
}

func TestConvertIssue(t *testing.T) {
	issue := convertIssue(&models.IssueScheme{
		Key: "PROJ-7",
		Fields: &models.IssueFieldsScheme{
			Summary:  "Build the bypass",
			Assignee: &models.UserScheme{DisplayName: "Prostetnic Jeltz"},
			Status:   &models.StatusScheme{Name: "In Progress"},
			Updated:  "2024-03-15T11:58:30.000+0000",
		},
	})
	require.NotNil(t, issue)
	assert.Equal(t, "PROJ-7", issue.Key)
	assert.Equal(t, "Build the bypass", issue.Summary)
	assert.Equal(t, "Prostetnic Jeltz", issue.Assignee)
	assert.Equal(t, "In Progress", issue.Status)
	assert.True(t, issue.UpdatedAt.Equal(time.Date(2024, 3, 15, 11, 58, 30, 0, time.UTC)))
}

func TestConvertIssue_MissingFields(t *testing.T) {
	assert.Nil(t, convertIssue(nil))
	assert.Nil(t, convertIssue(&models.IssueScheme{}))

	issue := convertIssue(&models.IssueScheme{Key: "PROJ-1", Fields: &models.IssueFieldsScheme{Summary: "Unassigned"}})
	require.NotNil(t, issue)
	assert.Equal(t, "", issue.Assignee)
	assert.True(t, issue.UpdatedAt.IsZero())
}

func TestConvertWorklogs(t *testing.T) {
	c, logs := observedClient()

	worklogs := c.convertWorklogs("PROJ-1", []*models.IssueWorklogADFScheme{
		{
			ID:        "2",
			Author:    &models.UserDetailScheme{DisplayName: "Ford"},
			TimeSpent: "1h 30m",
			Updated:   "2024-03-15T10:00:00.000+0000",
			Started:   "2024-03-15T08:30:00.000+0000",
		},
		{
			ID:               "1",
			TimeSpentSeconds: 600,
			Updated:          "2024-03-14T10:00:00.000+0100",
		},
		{ID: "3", TimeSpent: "forever", Updated: "2024-03-15T10:00:00.000+0000"},
		{ID: "4", TimeSpent: "5m", Updated: "not a date"},
		nil,
	})

	require.Len(t, worklogs, 2)

	assert.Equal(t, "1", worklogs[0].RemoteID)
	assert.Equal(t, 10*time.Minute, worklogs[0].Duration)
	assert.Equal(t, worklogs[0].UpdatedAt, worklogs[0].StartedAt)

	assert.Equal(t, "2", worklogs[1].RemoteID)
	assert.Equal(t, "Ford", worklogs[1].Author)
	assert.Equal(t, 90*time.Minute, worklogs[1].Duration)
	assert.True(t, worklogs[1].Submitted)
	assert.Equal(t, "PROJ-1", worklogs[1].IssueKey)

	skipped := logs.FilterMessage("skipping worklog")
	assert.Equal(t, 2, skipped.Len())
}

func TestCommentPayload(t *testing.T) {
	assert.Nil(t, commentPayload(""))

	p := commentPayload("fixed the thing")
	require.NotNil(t, p)
	assert.Equal(t, "doc", p.Type)
	assert.Equal(t, 1, p.Version)
	require.Len(t, p.Content, 1)
	assert.Equal(t, "paragraph", p.Content[0].Type)
	require.Len(t, p.Content[0].Content, 1)
	assert.Equal(t, "text", p.Content[0].Content[0].Type)
	assert.Equal(t, "fixed the thing", p.Content[0].Content[0].Text)
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New("", "user", "token", nil)
	assert.Error(t, err)

	c, err := New("https://example.atlassian.net", "user", "token", nil)
	require.NoError(t, err)
	assert.Contains(t, c.BaseURL(), "example.atlassian.net")
}

func newTestServer(t *testing.T, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, "user", "token", nil)
	require.NoError(t, err)
	return c
}

func TestAddWorklog(t *testing.T) {
	started := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	c := newTestServer(t, `{"id":"10010"}`)
	id, err := c.AddWorklog(context.Background(), "PROJ-1", started, 30*time.Minute, "paperwork")
	require.NoError(t, err)
	assert.Equal(t, "10010", id)

	c = newTestServer(t, `{}`)
	id, err = c.AddWorklog(context.Background(), "PROJ-1", started, 30*time.Minute, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no worklog id")
	assert.Empty(t, id)
}
