package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/gueldenstone/vogonix/internal/models"
)

// TimerRepo provides database operations for per-issue timers.
type TimerRepo struct {
	db *sql.DB
}

// NewTimerRepo creates a new TimerRepo.
func NewTimerRepo(db *sql.DB) *TimerRepo {
	return &TimerRepo{db: db}
}

const timerColumns = `issue_key, accumulated_ns, running_since, updated_at`

// Get retrieves the timer of an issue. Returns nil, nil when none exists.
func (r *TimerRepo) Get(issueKey string) (*models.Timer, error) {
	query := `SELECT ` + timerColumns + ` FROM timers WHERE issue_key = ?`
	t, err := scanTimer(r.db.QueryRow(query, issueKey))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// Save inserts or replaces a timer.
func (r *TimerRepo) Save(t *models.Timer) error {
	if t.Accumulated < 0 {
		return fmt.Errorf("timer accumulation cannot be negative")
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = time.Now()
	}

	query := `
		INSERT INTO timers (issue_key, accumulated_ns, running_since, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(issue_key) DO UPDATE SET
			accumulated_ns = excluded.accumulated_ns,
			running_since = excluded.running_since,
			updated_at = excluded.updated_at
	`
	_, err := r.db.Exec(query, t.IssueKey, int64(t.Accumulated), nullTime(t.RunningSince), FormatTime(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save timer: %w", err)
	}
	return nil
}

// Delete removes the timer of an issue. Deleting a missing timer is not an error.
func (r *TimerRepo) Delete(issueKey string) error {
	if _, err := r.db.Exec(`DELETE FROM timers WHERE issue_key = ?`, issueKey); err != nil {
		return fmt.Errorf("failed to delete timer: %w", err)
	}
	return nil
}

// List retrieves all timers ordered by issue key.
func (r *TimerRepo) List() ([]*models.Timer, error) {
	rows, err := r.db.Query(`SELECT ` + timerColumns + ` FROM timers ORDER BY issue_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list timers: %w", err)
	}
	defer rows.Close()

	var timers []*models.Timer
	for rows.Next() {
		t, err := scanTimer(rows)
		if err != nil {
			return nil, err
		}
		timers = append(timers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating timers: %w", err)
	}
	return timers, nil
}

func scanTimer(row rowScanner) (*models.Timer, error) {
	var t models.Timer
	var accumulated int64
	var runningSince sql.NullString
	var updatedAt string

	err := row.Scan(&t.IssueKey, &accumulated, &runningSince, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan timer: %w", err)
	}

	t.Accumulated = time.Duration(accumulated)
	if t.RunningSince, err = parseNullTime(runningSince); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = ParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
