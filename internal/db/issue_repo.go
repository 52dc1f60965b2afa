package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/gueldenstone/vogonix/internal/models"
)

// IssueRepo provides database operations for cached issues.
type IssueRepo struct {
	db *sql.DB
}

// NewIssueRepo creates a new IssueRepo.
func NewIssueRepo(db *sql.DB) *IssueRepo {
	return &IssueRepo{db: db}
}

const issueColumns = `key, summary, assignee, status, updated_at, synced_at`

// Upsert inserts an issue or refreshes the cached fields of an existing one.
func (r *IssueRepo) Upsert(i *models.Issue) error {
	if err := i.Validate(); err != nil {
		return fmt.Errorf("invalid issue: %w", err)
	}
	if i.UpdatedAt.IsZero() {
		i.UpdatedAt = time.Now()
	}

	query := `
		INSERT INTO issues (key, summary, assignee, status, updated_at, synced_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			summary = excluded.summary,
			assignee = excluded.assignee,
			status = excluded.status,
			updated_at = excluded.updated_at,
			synced_at = COALESCE(excluded.synced_at, issues.synced_at)
	`
	_, err := r.db.Exec(query, i.Key, i.Summary, i.Assignee, i.Status,
		FormatTime(i.UpdatedAt), nullTime(i.SyncedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert issue: %w", err)
	}
	return nil
}

// EnsureExists inserts a placeholder row for key if none exists yet.
func (r *IssueRepo) EnsureExists(key string, now time.Time) error {
	query := `INSERT INTO issues (key, updated_at) VALUES (?, ?) ON CONFLICT(key) DO NOTHING`
	if _, err := r.db.Exec(query, key, FormatTime(now)); err != nil {
		return fmt.Errorf("failed to ensure issue %s: %w", key, err)
	}
	return nil
}

// GetByKey retrieves an issue by key. Returns nil, nil when not found.
func (r *IssueRepo) GetByKey(key string) (*models.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE key = ?`
	i, err := scanIssue(r.db.QueryRow(query, key))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return i, err
}

// List retrieves all cached issues ordered by key.
func (r *IssueRepo) List() ([]*models.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues ORDER BY key`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	var issues []*models.Issue
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating issues: %w", err)
	}
	return issues, nil
}

// Delete removes an issue and, by cascade, its worklogs.
func (r *IssueRepo) Delete(key string) error {
	result, err := r.db.Exec(`DELETE FROM issues WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete issue: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("issue not found")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanIssue(row rowScanner) (*models.Issue, error) {
	var i models.Issue
	var updatedAt string
	var syncedAt sql.NullString

	err := row.Scan(&i.Key, &i.Summary, &i.Assignee, &i.Status, &updatedAt, &syncedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan issue: %w", err)
	}

	if i.UpdatedAt, err = ParseTime(updatedAt); err != nil {
		return nil, err
	}
	if i.SyncedAt, err = parseNullTime(syncedAt); err != nil {
		return nil, err
	}
	return &i, nil
}
