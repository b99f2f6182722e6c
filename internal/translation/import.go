package translation

import (
	"fmt"
	"os"
	"strings"
)

// ImportResult counts the rows of one imported Anki file
type ImportResult struct {
	Imported int
	Skipped  int
	Failed   int // rows whose cache write did not reach disk
}

// ImportTSV loads an Anki TSV export (word, translation, sentence,
// sentence_translation, ...) into the store. Directive lines starting with
// '#', rows with fewer than four fields and rows without word or
// translation are skipped.
func ImportTSV(path string, store *Store) (ImportResult, error) {
	var result ImportResult

	content, err := os.ReadFile(path)
	if err != nil {
		return result, fmt.Errorf("failed to read Anki file: %w", err)
	}

	for _, line := range strings.Split(strings.TrimSpace(string(content)), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 4 {
			result.Skipped++
			continue
		}

		word := strings.TrimSpace(parts[0])
		translation := strings.TrimSpace(parts[1])
		if word == "" || translation == "" {
			result.Skipped++
			continue
		}

		res := store.Add(word, translation, strings.TrimSpace(parts[2]), strings.TrimSpace(parts[3]))
		if !res.OK() {
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result, nil
}
