// Package dedup collapses word records from one or many documents into a
// globally unique set and splits it into words the cache already knows and
// words that still need translating.
package dedup

import (
	"codeberg.org/snonux/markanki/internal/translation"
	"codeberg.org/snonux/markanki/internal/vocab"
)

// Lookup is the read side of the translation store
type Lookup interface {
	Get(word string) (translation.Entry, bool)
}

// Result holds the classified records. Unique keeps input order; Cached and
// Uncached partition it.
type Result struct {
	Unique   []vocab.Record
	Cached   []vocab.Record
	Uncached []vocab.Record
	Total    int // records seen, duplicates included
}

// Classify walks records in order. The first record for a key wins and is
// checked against the store; later records with the same key are dropped.
// Only store presence counts: a translation carried by the record itself is
// ignored.
func Classify(records []vocab.Record, store Lookup) Result {
	result := Result{Total: len(records)}
	seen := make(map[string]bool, len(records))

	for _, rec := range records {
		key := rec.Key
		if key == "" {
			key = vocab.Normalize(rec.Word)
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		rec.Key = key
		rec.Translation = ""
		rec.SentenceTranslation = ""

		if entry, ok := store.Get(key); ok {
			rec.Translation = entry.Translation
			if example, ok := entry.Canonical(); ok {
				rec.SentenceTranslation = example.SentenceTranslation
			}
			result.Cached = append(result.Cached, rec)
		} else {
			result.Uncached = append(result.Uncached, rec)
		}
		result.Unique = append(result.Unique, rec)
	}

	return result
}

// Flatten concatenates the words of several streams in the given order
func Flatten(streams ...[]vocab.Record) []vocab.Record {
	var n int
	for _, s := range streams {
		n += len(s)
	}

	out := make([]vocab.Record, 0, n)
	for _, s := range streams {
		out = append(out, s...)
	}
	return out
}
