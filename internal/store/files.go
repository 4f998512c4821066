package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeToken = regexp.MustCompile(`[^a-z0-9_-]`)

// SafeToken derives the filesystem-safe storage key for a target name:
// lower-cased, with every character outside [a-z0-9_-] replaced by '_'.
// Distinct names that collapse to the same token would share storage; the
// config loader rejects such configurations up front.
func SafeToken(name string) string {
	return unsafeToken.ReplaceAllString(strings.ToLower(name), "_")
}

// atomicWriteFile writes data using a temp file + rename so the target path
// never holds a partial write. A failed write leaves the previously committed
// file untouched.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	// Fsync before rename so the save is durable once this returns.
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	tmpFile = nil // Prevent double close in defer

	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("set permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
