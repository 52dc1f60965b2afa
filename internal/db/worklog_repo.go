package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/gueldenstone/vogonix/internal/models"
)

// WorklogRepo provides database operations for worklogs.
type WorklogRepo struct {
	db *sql.DB
}

// NewWorklogRepo creates a new WorklogRepo.
func NewWorklogRepo(db *sql.DB) *WorklogRepo {
	return &WorklogRepo{db: db}
}

const worklogColumns = `id, issue_key, remote_id, duration_ns, comment, author, started_at, updated_at, submitted`

// Create inserts a worklog.
func (r *WorklogRepo) Create(w *models.Worklog) error {
	return createWorklog(r.db, w)
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func createWorklog(ex execer, w *models.Worklog) error {
	if err := w.Validate(); err != nil {
		return fmt.Errorf("invalid worklog: %w", err)
	}
	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = time.Now()
	}
	if w.StartedAt.IsZero() {
		w.StartedAt = w.UpdatedAt
	}

	query := `
		INSERT INTO worklogs (issue_key, remote_id, duration_ns, comment, author, started_at, updated_at, submitted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := ex.Exec(query,
		w.IssueKey, nullString(w.RemoteID), int64(w.Duration),
		nullString(w.Comment), nullString(w.Author),
		FormatTime(w.StartedAt), FormatTime(w.UpdatedAt), w.Submitted,
	)
	if err != nil {
		return fmt.Errorf("failed to create worklog: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get worklog id: %w", err)
	}
	w.ID = id
	return nil
}

// ReplaceRemote swaps the tracker-sourced worklogs of an issue for worklogs
// in one transaction. Locally submitted worklogs without a remote id are
// kept.
func (r *WorklogRepo) ReplaceRemote(issueKey string, worklogs []*models.Worklog) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM worklogs WHERE issue_key = ? AND remote_id IS NOT NULL`, issueKey); err != nil {
		return fmt.Errorf("failed to clear remote worklogs: %w", err)
	}
	for _, w := range worklogs {
		w.IssueKey = issueKey
		if err := createWorklog(tx, w); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit worklogs: %w", err)
	}
	return nil
}

// ListByIssue returns the worklogs of an issue, oldest update first.
func (r *WorklogRepo) ListByIssue(issueKey string) ([]*models.Worklog, error) {
	query := `SELECT ` + worklogColumns + ` FROM worklogs WHERE issue_key = ? ORDER BY id`
	rows, err := r.db.Query(query, issueKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list worklogs: %w", err)
	}
	defer rows.Close()

	var worklogs []*models.Worklog
	for rows.Next() {
		w, err := scanWorklog(rows)
		if err != nil {
			return nil, err
		}
		worklogs = append(worklogs, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating worklogs: %w", err)
	}
	models.SortByUpdated(worklogs)
	return worklogs, nil
}

// TotalByIssue sums the logged time of an issue.
func (r *WorklogRepo) TotalByIssue(issueKey string) (time.Duration, error) {
	var total int64
	err := r.db.QueryRow(`SELECT COALESCE(SUM(duration_ns), 0) FROM worklogs WHERE issue_key = ?`, issueKey).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum worklogs: %w", err)
	}
	return time.Duration(total), nil
}

func scanWorklog(row rowScanner) (*models.Worklog, error) {
	var w models.Worklog
	var remoteID, comment, author sql.NullString
	var durationNs int64
	var startedAt, updatedAt string

	err := row.Scan(&w.ID, &w.IssueKey, &remoteID, &durationNs, &comment, &author,
		&startedAt, &updatedAt, &w.Submitted)
	if err != nil {
		return nil, fmt.Errorf("failed to scan worklog: %w", err)
	}

	w.RemoteID = remoteID.String
	w.Comment = comment.String
	w.Author = author.String
	w.Duration = time.Duration(durationNs)
	if w.StartedAt, err = ParseTime(startedAt); err != nil {
		return nil, err
	}
	if w.UpdatedAt, err = ParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}
