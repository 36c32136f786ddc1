package snapshot

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/seitool/sei/internal/db"
	"github.com/seitool/sei/internal/entry"
	"github.com/seitool/sei/internal/rules"

	_ "modernc.org/sqlite"
)

// Manager persists scan results as SQLite snapshot files, with
// locking and retention pruning.
type Manager struct {
	outputDir string
	retention int
	lockFile  *os.File
}

// NewManager creates a snapshot manager writing into outputDir.
// retention <= 0 disables pruning.
func NewManager(outputDir string, retention int) *Manager {
	return &Manager{
		outputDir: outputDir,
		retention: retention,
	}
}

// Save writes a completed scan to a new snapshot file and returns its
// path. The snapshot is built in a temp file and renamed into place,
// so readers never observe a partial database.
func (m *Manager) Save(meta db.Meta, ruleList []rules.Rule, nodes []*entry.Node) (string, error) {
	if err := os.MkdirAll(m.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := m.acquireLock(); err != nil {
		return "", fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer m.releaseLock()

	tempPath := filepath.Join(m.outputDir, fmt.Sprintf(".sei-temp-%d.db", time.Now().UnixNano()))
	database, err := sql.Open("sqlite", tempPath)
	if err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to create database: %w", err)
	}

	if err := db.InitSchema(database); err != nil {
		database.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := db.ApplyWritePragmas(database); err != nil {
		database.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := db.SaveScan(database, meta, ruleList, nodes); err != nil {
		database.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to save scan: %w", err)
	}

	if err := db.Finalize(database); err != nil {
		database.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to finalize database: %w", err)
	}
	database.Close()

	finalName := fmt.Sprintf("sei-%s.db", time.Now().Format("20060102-150405"))
	finalPath := filepath.Join(m.outputDir, finalName)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to rename database: %w", err)
	}

	// Update latest.db symlink atomically via temp symlink + rename
	latestPath := filepath.Join(m.outputDir, "latest.db")
	tempLink := filepath.Join(m.outputDir, ".latest.db.tmp")
	os.Remove(tempLink) // Clean up any stale temp link
	if err := os.Symlink(finalName, tempLink); err == nil {
		if err := os.Rename(tempLink, latestPath); err != nil {
			os.Remove(tempLink)
			fmt.Fprintf(os.Stderr, "warning: failed to update latest.db symlink: %v\n", err)
		}
	} else {
		fmt.Fprintf(os.Stderr, "warning: failed to create latest.db symlink: %v\n", err)
	}

	if err := m.pruneOldSnapshots(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to prune old snapshots: %v\n", err)
	}

	return finalPath, nil
}

// Open opens a snapshot for read-only browsing.
func Open(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("snapshot not found: %w", err)
	}
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	if err := db.ApplyReadPragmas(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	return database, nil
}

func (m *Manager) acquireLock() error {
	lockPath := filepath.Join(m.outputDir, ".sei.lock")
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return err
	}

	// Try to acquire exclusive lock
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		return fmt.Errorf("another snapshot save is in progress")
	}

	m.lockFile = f
	return nil
}

func (m *Manager) releaseLock() {
	if m.lockFile != nil {
		syscall.Flock(int(m.lockFile.Fd()), syscall.LOCK_UN)
		m.lockFile.Close()
		m.lockFile = nil
	}
}

func (m *Manager) pruneOldSnapshots() error {
	if m.retention <= 0 {
		return nil
	}

	snapshots, err := m.snapshotNames()
	if err != nil {
		return err
	}

	// Names embed the timestamp, so lexical order is chronological
	for len(snapshots) > m.retention {
		oldPath := filepath.Join(m.outputDir, snapshots[0])
		if err := os.Remove(oldPath); err != nil {
			return fmt.Errorf("failed to remove %s: %w", snapshots[0], err)
		}
		snapshots = snapshots[1:]
	}

	return nil
}

func (m *Manager) snapshotNames() ([]string, error) {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return nil, err
	}

	var snapshots []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "sei-") && strings.HasSuffix(e.Name(), ".db") {
			snapshots = append(snapshots, e.Name())
		}
	}
	sort.Strings(snapshots)
	return snapshots, nil
}

// Latest returns the path to the most recent snapshot.
func (m *Manager) Latest() (string, error) {
	latestPath := filepath.Join(m.outputDir, "latest.db")
	resolved, err := filepath.EvalSymlinks(latestPath)
	if err != nil {
		return "", fmt.Errorf("no latest snapshot found: %w", err)
	}
	return resolved, nil
}

// List returns all snapshot paths sorted oldest first.
func (m *Manager) List() ([]string, error) {
	names, err := m.snapshotNames()
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(m.outputDir, name)
	}
	return paths, nil
}
