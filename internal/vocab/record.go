package vocab

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Record is one marked word occurrence. The JSON field names are part of the
// batch file format consumed by the external translation step.
type Record struct {
	Word                string `json:"word"`
	Key                 string `json:"word_lower"`
	Sentence            string `json:"sentence"`
	Translation         string `json:"translation"`
	SentenceTranslation string `json:"sentence_translation"`
	// GroupLabel names the originating document. It tags output and is
	// never part of a record's identity.
	GroupLabel string `json:"deck_name,omitempty"`
}

// NewRecord builds an unresolved record for a surface form found in a document
func NewRecord(surface, sentence, groupLabel string) Record {
	surface = strings.TrimSpace(surface)
	return Record{
		Word:       surface,
		Key:        Normalize(surface),
		Sentence:   sentence,
		GroupLabel: groupLabel,
	}
}

// Normalize returns the lookup key for a word: trimmed and lowercased
func Normalize(word string) string {
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Lower(language.Und).String(strings.TrimSpace(word))
}

// Resolved reports whether the record carries a translation
func (r Record) Resolved() bool {
	return r.Translation != ""
}
