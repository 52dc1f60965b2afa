// Package backup keeps rotating copies of the vogonix database.
//
// A copy is taken on startup when the newest one is older than the configured
// interval. Copies sit next to the database (or in backup.path) and are named
// after it: vogonix.db.bak.1 is the newest, higher numbers are older.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gueldenstone/vogonix/internal/config"
	"github.com/gueldenstone/vogonix/internal/duration"
)

const suffix = ".bak."

// Backup is one rotated copy of the database.
type Backup struct {
	Path    string    `json:"path"`
	Number  int       `json:"number"`
	ModTime time.Time `json:"mod_time"`
}

// Manager creates and rotates backups of a single database file.
type Manager struct {
	dbPath string
	dir    string
	prefix string
	cfg    config.BackupConfig
	now    duration.Clock
	logger *zap.Logger
}

// NewManager creates a Manager for the database at dbPath. now may be nil.
func NewManager(dbPath string, cfg config.BackupConfig, now duration.Clock, logger *zap.Logger) *Manager {
	dir := cfg.Path
	if dir == "" {
		dir = filepath.Dir(dbPath)
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		dbPath: dbPath,
		dir:    dir,
		prefix: filepath.Base(dbPath) + suffix,
		cfg:    cfg,
		now:    now,
		logger: logger,
	}
}

// Dir returns the directory holding the backups.
func (m *Manager) Dir() string {
	return m.dir
}

// BackupIfNeeded takes a backup when backups are enabled, the database
// exists and the newest backup is older than the interval. It returns the
// new backup path, or "" when nothing was done.
func (m *Manager) BackupIfNeeded() (string, error) {
	if !m.cfg.Enabled {
		return "", nil
	}
	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return "", nil
	}

	due, err := m.due()
	if err != nil {
		return "", fmt.Errorf("checking backup age: %w", err)
	}
	if !due {
		return "", nil
	}
	return m.Backup()
}

func (m *Manager) due() (bool, error) {
	backups, err := m.List()
	if err != nil {
		return false, err
	}
	if len(backups) == 0 {
		return true, nil
	}
	age := m.now().Sub(backups[0].ModTime)
	return age > time.Duration(m.cfg.IntervalHours)*time.Hour, nil
}

// Backup rotates the existing backups and copies the database to slot 1.
func (m *Manager) Backup() (string, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}
	if err := m.rotate(); err != nil {
		return "", fmt.Errorf("rotating backups: %w", err)
	}

	path := m.slot(1)
	if err := copyFile(m.dbPath, path); err != nil {
		return "", fmt.Errorf("copying database: %w", err)
	}
	// Stamp the copy with the injected clock so age checks agree with it.
	now := m.now()
	if err := os.Chtimes(path, now, now); err != nil {
		return "", fmt.Errorf("stamping backup: %w", err)
	}

	m.logger.Info("database backed up", zap.String("path", path))
	return path, nil
}

// List returns the existing backups, newest first.
func (m *Manager) List() ([]Backup, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var backups []Backup
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), m.prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(entry.Name(), m.prefix))
		if err != nil || n < 1 {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat backup %s: %w", entry.Name(), err)
		}
		backups = append(backups, Backup{
			Path:    filepath.Join(m.dir, entry.Name()),
			Number:  n,
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool { return backups[i].Number < backups[j].Number })
	return backups, nil
}

func (m *Manager) slot(n int) string {
	return filepath.Join(m.dir, m.prefix+strconv.Itoa(n))
}

// rotate shifts every backup up one slot, dropping those past MaxCount.
// Oldest first, so no rename overwrites a file still to be moved.
func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := len(backups) - 1; i >= 0; i-- {
		b := backups[i]
		next := b.Number + 1
		if next > m.cfg.MaxCount {
			if err := os.Remove(b.Path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("deleting old backup %s: %w", b.Path, err)
			}
			m.logger.Debug("dropped old backup", zap.String("path", b.Path))
			continue
		}
		if err := os.Rename(b.Path, m.slot(next)); err != nil {
			return fmt.Errorf("renaming backup %s: %w", b.Path, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return out.Sync()
}
