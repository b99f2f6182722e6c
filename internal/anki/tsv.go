package anki

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// TSVWriter writes Anki's plain text import format with a directive header
type TSVWriter struct{}

// Ext returns the artifact file extension
func (w *TSVWriter) Ext() string {
	return ".txt"
}

// Write creates dest with one tab separated line per card
func (w *TSVWriter) Write(cards []Card, dest, deckName string) error {
	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create Anki file: %w", err)
	}
	defer file.Close()

	out := bufio.NewWriter(file)
	fmt.Fprintln(out, "#separator:tab")
	fmt.Fprintf(out, "#deck:%s\n", sanitize(deckName))
	fmt.Fprintln(out, "#columns:word\ttranslation\tsentence\tsentence_translation\ttags")

	for _, c := range cards {
		fmt.Fprintln(out, strings.Join([]string{c.Word, c.Translation, c.Sentence, c.SentenceTranslation, c.Tag}, "\t"))
	}

	if err := out.Flush(); err != nil {
		return fmt.Errorf("failed to write Anki file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close Anki file: %w", err)
	}
	return nil
}
