package translation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/markanki/internal/vocab"
)

// Example is one example sentence recorded for a word
type Example struct {
	Sentence            string `json:"sentence"`
	SentenceTranslation string `json:"sentence_translation"`
}

// Entry is the cached knowledge about one word
type Entry struct {
	Translation      string    `json:"translation"`
	SentenceExamples []Example `json:"sentence_examples"`
}

// Canonical returns the first recorded example, used as the display fallback
func (e Entry) Canonical() (Example, bool) {
	if len(e.SentenceExamples) == 0 {
		return Example{}, false
	}
	return e.SentenceExamples[0], true
}

// Stats summarizes the store contents
type Stats struct {
	Words    int
	Examples int
}

// WriteResult reports the outcome of a mutation. The in-memory change is
// kept even when Err is set; Err means it did not reach disk.
type WriteResult struct {
	Key     string
	Changed bool
	Err     error
}

// OK reports whether the mutation was flushed to disk
func (r WriteResult) OK() bool {
	return r.Err == nil
}

// Store is a write-through translation cache backed by a single JSON file.
// Every mutation is flushed before it returns, so independent runs always
// observe each other's translations. The store assumes a single writer;
// concurrent processes sharing a file can lose updates.
type Store struct {
	path    string
	entries map[string]*Entry
	dirty   bool
	loadErr error
}

// OpenStore loads the cache file at path. A missing file yields an empty
// store. An unreadable or malformed file also yields an empty store; the
// problem is printed to warn (when non-nil) and kept in LoadErr.
func OpenStore(path string, warn io.Writer) *Store {
	s := &Store{
		path:    path,
		entries: make(map[string]*Entry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.loadErr = err
		}
	} else if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &s.entries); err != nil {
			s.loadErr = err
			s.entries = make(map[string]*Entry)
		}
	}

	if s.loadErr != nil && warn != nil {
		fmt.Fprintf(warn, "Warning: Failed to load translation cache %s: %v (starting with an empty cache)\n", path, s.loadErr)
	}

	// Entries written by hand may be null or miss the examples list.
	for key, entry := range s.entries {
		if entry == nil {
			delete(s.entries, key)
			continue
		}
		if entry.SentenceExamples == nil {
			entry.SentenceExamples = []Example{}
		}
	}

	return s
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// LoadErr returns the error that forced an empty store on open, if any
func (s *Store) LoadErr() error {
	return s.loadErr
}

// Get returns the entry for a word; the word is normalized before lookup
func (s *Store) Get(word string) (Entry, bool) {
	entry, ok := s.entries[vocab.Normalize(word)]
	if !ok {
		return Entry{}, false
	}

	out := Entry{Translation: entry.Translation}
	if len(entry.SentenceExamples) > 0 {
		out.SentenceExamples = append([]Example(nil), entry.SentenceExamples...)
	}
	return out, true
}

// Has reports whether a translation is known for word
func (s *Store) Has(word string) bool {
	_, ok := s.entries[vocab.Normalize(word)]
	return ok
}

// Len returns the number of cached words
func (s *Store) Len() int {
	return len(s.entries)
}

// Add records a translation for word. An existing translation is
// overwritten; a blank translation is rejected and changes nothing. The example is appended only when both sentence fields are
// non-empty and the identical pair is not yet recorded.
func (s *Store) Add(word, translation, sentence, sentenceTranslation string) WriteResult {
	key := vocab.Normalize(word)
	result := WriteResult{Key: key}
	if key == "" {
		result.Err = fmt.Errorf("empty word")
		return result
	}
	if strings.TrimSpace(translation) == "" {
		result.Err = fmt.Errorf("empty translation for %q", key)
		return result
	}

	entry, ok := s.entries[key]
	if !ok {
		entry = &Entry{SentenceExamples: []Example{}}
		s.entries[key] = entry
		result.Changed = true
	}

	if entry.Translation != translation {
		entry.Translation = translation
		result.Changed = true
	}

	if sentence != "" && sentenceTranslation != "" {
		example := Example{Sentence: sentence, SentenceTranslation: sentenceTranslation}
		if !containsExample(entry.SentenceExamples, example) {
			entry.SentenceExamples = append(entry.SentenceExamples, example)
			result.Changed = true
		}
	}

	result.Err = s.flush()
	return result
}

func containsExample(examples []Example, example Example) bool {
	for _, e := range examples {
		if e == example {
			return true
		}
	}
	return false
}

// Stats returns aggregate counts
func (s *Store) Stats() Stats {
	stats := Stats{Words: len(s.entries)}
	for _, entry := range s.entries {
		stats.Examples += len(entry.SentenceExamples)
	}
	return stats
}

// Clear removes every entry and flushes the empty store
func (s *Store) Clear() WriteResult {
	result := WriteResult{Changed: len(s.entries) > 0}
	s.entries = make(map[string]*Entry)
	result.Err = s.flush()
	return result
}

// Close flushes a pending write left behind by a failed flush
func (s *Store) Close() error {
	if !s.dirty {
		return nil
	}
	return s.flush()
}

// flush writes the whole store atomically: a temp file in the same
// directory is renamed over the cache file.
func (s *Store) flush() error {
	s.dirty = true

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.entries); err != nil {
		return fmt.Errorf("failed to encode translation cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to save translation cache: %w", err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to save translation cache: %w", err)
	}

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to save translation cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to save translation cache: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to save translation cache: %w", err)
	}

	s.dirty = false
	return nil
}
