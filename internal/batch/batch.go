// Package batch splits words that still need translating into bounded
// batches and keeps them as JSON files an external translation step can
// pick up one at a time.
package batch

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/markanki/internal"
	"codeberg.org/snonux/markanki/internal/vocab"
)

// DefaultCapacity is the number of words per batch
const DefaultCapacity = 30

var (
	// ErrInvalidCapacity is returned for a batch capacity below one
	ErrInvalidCapacity = errors.New("batch capacity must be positive")

	// ErrNoSiblings is returned when no batch file exists for a set key
	ErrNoSiblings = errors.New("no batch files found")
)

// Batch is one unit of outstanding translation work
type Batch struct {
	Ordinal int // 1-based
	Total   int
	Members []vocab.Record
}

// Keys returns the member keys in order
func (b Batch) Keys() []string {
	keys := make([]string, 0, len(b.Members))
	for _, m := range b.Members {
		keys = append(keys, m.Key)
	}
	return keys
}

// Partition splits records into contiguous batches of at most capacity
// members, keeping their order
func Partition(records []vocab.Record, capacity int) ([]Batch, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	total := (len(records) + capacity - 1) / capacity
	batches := make([]Batch, 0, total)

	for start := 0; start < len(records); start += capacity {
		end := start + capacity
		if end > len(records) {
			end = len(records)
		}

		members := make([]vocab.Record, end-start)
		copy(members, records[start:end])

		batches = append(batches, Batch{
			Ordinal: len(batches) + 1,
			Total:   total,
			Members: members,
		})
	}

	return batches, nil
}

// Set describes where a batch set came from
type Set struct {
	Key       string // file name safe identifier shared by all batches
	Label     string // human readable deck name
	Source    string // source document or directory
	Directory bool
}

// NewSet derives the set for a source document or directory
func NewSet(source string, directory bool) Set {
	label := filepath.Base(filepath.Clean(source))
	if !directory {
		label = strings.TrimSuffix(label, filepath.Ext(label))
	}

	return Set{
		Key:       internal.SanitizeFilename(label),
		Label:     label,
		Source:    source,
		Directory: directory,
	}
}
