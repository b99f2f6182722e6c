package batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"codeberg.org/snonux/markanki/internal/vocab"
)

// Handle points at one batch file of a set
type Handle struct {
	Path    string
	SetKey  string
	Ordinal int
}

// SiblingFinder discovers and loads the batch files of a set
type SiblingFinder interface {
	FindSiblings(setKey string) ([]Handle, error)
	Load(h Handle) (*File, error)
}

// Storage keeps batch files in a single directory
type Storage struct {
	dir string
}

// NewStorage returns a storage rooted at dir
func NewStorage(dir string) *Storage {
	return &Storage{dir: dir}
}

// Dir returns the batch directory
func (s *Storage) Dir() string {
	return s.dir
}

// HandleFor resolves a batch file path given by the user
func HandleFor(path string) (Handle, error) {
	setKey, ordinal, ok := ParseFileName(filepath.Base(path))
	if !ok {
		return Handle{}, fmt.Errorf("not a batch file: %s", path)
	}
	return Handle{Path: path, SetKey: setKey, Ordinal: ordinal}, nil
}

// WriteSet writes the batches of a set, replacing any files an earlier run
// left for the same set key
func (s *Storage) WriteSet(set Set, batches []Batch) ([]Handle, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create batch directory: %w", err)
	}

	stale, err := s.FindSiblings(set.Key)
	if err == nil {
		for _, h := range stale {
			if err := os.Remove(h.Path); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to remove stale batch file %s: %w", h.Path, err)
			}
		}
	}

	handles := make([]Handle, 0, len(batches))
	for _, b := range batches {
		file := File{Words: make([]vocab.Record, 0, len(b.Members))}
		if set.Directory {
			file.Directory = set.Source
		} else {
			file.DeckName = set.Label
			file.FilePath = set.Source
		}
		if b.Total > 1 {
			file.BatchInfo = FormatBatchInfo(b.Ordinal, b.Total)
		}

		for _, m := range b.Members {
			if !set.Directory {
				m.GroupLabel = ""
			}
			file.Words = append(file.Words, m)
		}

		path := filepath.Join(s.dir, FileName(set.Key, b.Ordinal, b.Total))
		if err := writeJSON(path, file); err != nil {
			return handles, err
		}
		handles = append(handles, Handle{Path: path, SetKey: set.Key, Ordinal: b.Ordinal})
	}

	return handles, nil
}

// FindSiblings lists every batch file of a set, ordered by ordinal
func (s *Storage) FindSiblings(setKey string) ([]Handle, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list batch directory: %w", err)
	}

	var handles []Handle
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		key, ordinal, ok := ParseFileName(entry.Name())
		if !ok || key != setKey {
			continue
		}
		handles = append(handles, Handle{
			Path:    filepath.Join(s.dir, entry.Name()),
			SetKey:  key,
			Ordinal: ordinal,
		})
	}

	if len(handles) == 0 {
		return nil, fmt.Errorf("%w for %q in %s", ErrNoSiblings, setKey, s.dir)
	}

	sort.Slice(handles, func(i, j int) bool {
		return handles[i].Ordinal < handles[j].Ordinal
	})
	return handles, nil
}

// Load reads a batch file
func (s *Storage) Load(h Handle) (*File, error) {
	return ReadFile(h.Path)
}

// ReadFile reads and decodes a batch file
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("malformed batch file %s: %w", path, err)
	}
	for i := range file.Words {
		if file.Words[i].Key == "" {
			file.Words[i].Key = vocab.Normalize(file.Words[i].Word)
		}
	}
	return &file, nil
}

func writeJSON(path string, v interface{}) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode batch file: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write batch file: %w", err)
	}
	return nil
}
