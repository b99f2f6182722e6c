// Package anki assembles resolved word records into flashcards and writes
// them as Anki import files (TSV) or packages (APKG).
package anki

import (
	"fmt"
	"strings"

	"codeberg.org/snonux/markanki/internal/vocab"
)

// Card is one flashcard. Fields never contain tabs or line breaks.
type Card struct {
	Key                 string // normalized word, used for stable note ids
	Word                string
	Translation         string
	Sentence            string
	SentenceTranslation string
	Tag                 string
}

// Group is the resolved word list of one source document
type Group struct {
	Label   string
	Records []vocab.Record
}

// IntegrityError reports a record that reached assembly without a translation
type IntegrityError struct {
	Key   string
	Group string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("word %q in %q has no translation", e.Key, e.Group)
}

var fieldReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\r", " ", "\n", " ")

func sanitize(s string) string {
	return fieldReplacer.Replace(s)
}

// sanitizeTag makes a label usable as a single Anki tag
func sanitizeTag(s string) string {
	return strings.Join(strings.Fields(s), "_")
}

// Assemble turns groups into cards, one per record, in group order. Every
// record must carry a translation.
func Assemble(groups []Group) ([]Card, error) {
	var cards []Card

	for _, g := range groups {
		for _, rec := range g.Records {
			if !rec.Resolved() {
				return nil, &IntegrityError{Key: rec.Key, Group: g.Label}
			}

			cards = append(cards, Card{
				Key:                 rec.Key,
				Word:                sanitize(rec.Word),
				Translation:         sanitize(rec.Translation),
				Sentence:            sanitize(rec.Sentence),
				SentenceTranslation: sanitize(rec.SentenceTranslation),
				Tag:                 sanitizeTag(g.Label),
			})
		}
	}

	return cards, nil
}
