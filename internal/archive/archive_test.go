package archive

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codeberg.org/snonux/markanki/internal/batch"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(`{"words":[]}`), 0644); err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
	}
}

func TestArchiveBatches(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir,
		"ch1_to_translate_batch_1.json",
		"ch1_to_translate_batch_1_translation.json",
		"ch1_to_translate_batch_2.json",
		"ch2_to_translate.json",
	)

	archivePath, moved, err := ArchiveBatches(tmpDir, "ch1")
	if err != nil {
		t.Fatalf("ArchiveBatches failed: %v", err)
	}

	if moved != 3 {
		t.Errorf("Expected 3 files moved, got %d", moved)
	}

	if !strings.HasPrefix(filepath.Base(archivePath), "ch1-") {
		t.Errorf("Archive name doesn't start with 'ch1-': %s", archivePath)
	}
	if filepath.Dir(archivePath) != filepath.Join(tmpDir, "archive") {
		t.Errorf("Archive created in unexpected place: %s", archivePath)
	}

	for _, name := range []string{"ch1_to_translate_batch_1.json", "ch1_to_translate_batch_1_translation.json", "ch1_to_translate_batch_2.json"} {
		if _, err := os.Stat(filepath.Join(archivePath, name)); err != nil {
			t.Errorf("%s not found in archive", name)
		}
		if _, err := os.Stat(filepath.Join(tmpDir, name)); !os.IsNotExist(err) {
			t.Errorf("%s still in batch directory", name)
		}
	}

	// Other sets stay put
	if _, err := os.Stat(filepath.Join(tmpDir, "ch2_to_translate.json")); err != nil {
		t.Error("Unrelated batch file was moved")
	}
}

func TestArchiveBatches_NoSiblings(t *testing.T) {
	_, _, err := ArchiveBatches(t.TempDir(), "ch1")
	if !errors.Is(err, batch.ErrNoSiblings) {
		t.Errorf("Expected ErrNoSiblings, got: %v", err)
	}
}

func TestArchiveBatches_MultipleArchives(t *testing.T) {
	tmpDir := t.TempDir()

	for i := 0; i < 2; i++ {
		writeFiles(t, tmpDir, "ch1_to_translate.json")

		// Small delay to ensure different timestamps
		if i == 1 {
			time.Sleep(10 * time.Millisecond)
		}

		if _, _, err := ArchiveBatches(tmpDir, "ch1"); err != nil {
			t.Fatalf("ArchiveBatches failed on iteration %d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(tmpDir, "archive"))
	if err != nil {
		t.Fatalf("Failed to read archive directory: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries in archive directory, got %d", len(entries))
	}
}

func TestResultPath(t *testing.T) {
	got := ResultPath("/tmp/ch1_to_translate_batch_2.json")
	if got != "/tmp/ch1_to_translate_batch_2_translation.json" {
		t.Errorf("ResultPath() = %q", got)
	}
}
