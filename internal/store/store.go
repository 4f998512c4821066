// Package store persists per-target monitoring state under a data directory:
// one snapshot file (last-known normalized text) and one history file (a JSON
// array of events) per target, both keyed by the target's filesystem token.
//
// History appends are read-modify-write with no locking. Callers must
// serialize operations for the same target; different targets are fully
// independent.
package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store is the on-disk snapshot and history storage.
type Store struct {
	snapshotsDir string
	historyDir   string
}

// New creates the snapshots/ and history/ subdirectories under dataDir if
// needed and returns a Store rooted there.
func New(dataDir string) (*Store, error) {
	s := &Store{
		snapshotsDir: filepath.Join(dataDir, "snapshots"),
		historyDir:   filepath.Join(dataDir, "history"),
	}
	for _, dir := range []string{s.snapshotsDir, s.historyDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	return s, nil
}

func (s *Store) snapshotPath(name string) string {
	return filepath.Join(s.snapshotsDir, SafeToken(name)+".txt")
}

func (s *Store) historyPath(name string) string {
	return filepath.Join(s.historyDir, SafeToken(name)+".json")
}

// LoadSnapshot returns the last saved snapshot for a target. The second
// return value is false when no snapshot has ever been saved.
func (s *Store) LoadSnapshot(name string) (string, bool, error) {
	data, err := os.ReadFile(s.snapshotPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read snapshot: %w", err)
	}
	return string(data), true, nil
}

// SaveSnapshot overwrites the target's snapshot. The write is atomic and
// durable before SaveSnapshot returns.
func (s *Store) SaveSnapshot(name, content string) error {
	if err := atomicWriteFile(s.snapshotPath(name), []byte(content), 0644); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// HasSnapshot reports whether a snapshot exists for the target.
func (s *Store) HasSnapshot(name string) bool {
	_, err := os.Stat(s.snapshotPath(name))
	return err == nil
}
