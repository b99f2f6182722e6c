// Package archive moves the batch files of a finished set out of the batch
// directory.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/snonux/markanki/internal/batch"
)

// ArchiveBatches moves every batch file of setKey, plus any translation
// result file saved next to it, into <batchDir>/archive/<setKey>-<timestamp>.
// It returns the archive path and the number of files moved.
func ArchiveBatches(batchDir, setKey string) (string, int, error) {
	handles, err := batch.NewStorage(batchDir).FindSiblings(setKey)
	if err != nil {
		return "", 0, err
	}

	timestamp := time.Now().Format("20060102-150405")
	archivePath := filepath.Join(batchDir, "archive", fmt.Sprintf("%s-%s", setKey, timestamp))

	// Check if archive already exists (unlikely but possible)
	if _, err := os.Stat(archivePath); err == nil {
		timestamp = time.Now().Format("20060102-150405.000000")
		archivePath = filepath.Join(batchDir, "archive", fmt.Sprintf("%s-%s", setKey, timestamp))
	}

	if err := os.MkdirAll(archivePath, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create archive directory: %w", err)
	}

	var moved int
	for _, h := range handles {
		paths := []string{h.Path, ResultPath(h.Path)}
		for _, path := range paths {
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if err := os.Rename(path, filepath.Join(archivePath, filepath.Base(path))); err != nil {
				return archivePath, moved, fmt.Errorf("failed to archive %s: %w", path, err)
			}
			moved++
		}
	}

	return archivePath, moved, nil
}

// ResultPath returns the default translation result path for a batch file
func ResultPath(batchPath string) string {
	return strings.TrimSuffix(batchPath, filepath.Ext(batchPath)) + "_translation.json"
}
