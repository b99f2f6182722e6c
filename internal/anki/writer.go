package anki

import (
	"fmt"
	"strings"
)

// Supported artifact formats
const (
	FormatTSV  = "tsv"
	FormatAPKG = "apkg"
)

// Writer persists a card list as an importable artifact
type Writer interface {
	Write(cards []Card, dest, deckName string) error
	Ext() string
}

// NewWriter returns the writer for a format name
func NewWriter(format string) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatTSV:
		return &TSVWriter{}, nil
	case FormatAPKG:
		return &APKGWriter{}, nil
	default:
		return nil, fmt.Errorf("unknown artifact format %q (use %s or %s)", format, FormatTSV, FormatAPKG)
	}
}
