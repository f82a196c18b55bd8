// Package archive rotates the server's speech cache out of the way so the
// next run starts with an empty cache.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNoCache is returned when the cache directory does not exist
var ErrNoCache = errors.New("cache directory does not exist")

// ArchiveCache moves dir to <parent>/archive/<name>-<timestamp> and
// returns the new path
func ArchiveCache(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("%w: no directory configured", ErrNoCache)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrNoCache, dir)
	}

	dir = filepath.Clean(dir)
	archiveDir := filepath.Join(filepath.Dir(dir), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	base := fmt.Sprintf("%s-%s", filepath.Base(dir), time.Now().Format("20060102-150405"))
	archivePath := filepath.Join(archiveDir, base)
	for n := 1; exists(archivePath); n++ {
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s.%d", base, n))
	}

	if err := os.Rename(dir, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive cache directory: %w", err)
	}
	return archivePath, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
