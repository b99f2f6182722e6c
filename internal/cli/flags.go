package cli

import (
	"os"
	"path/filepath"

	"codeberg.org/snonux/markanki/internal/anki"
	"codeberg.org/snonux/markanki/internal/batch"
	"codeberg.org/snonux/markanki/internal/extract"
	"codeberg.org/snonux/markanki/internal/translation"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile   string
	OutputDir string
	CacheFile string
	BatchDir  string
	BatchSize int
	Format    string
	DeckName  string

	// process flags
	Pattern string

	// translate flags
	Provider       string
	OpenAIModel    string
	GeminiModel    string
	TargetLanguage string
	TranslateOut   string
	TranslateSave  bool

	// cache flags
	Force bool
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		OutputDir:      ".",
		CacheFile:      DefaultCacheFile(),
		BatchDir:       os.TempDir(),
		BatchSize:      batch.DefaultCapacity,
		Format:         anki.FormatTSV,
		Pattern:        extract.DefaultPattern,
		Provider:       "openai",
		OpenAIModel:    "gpt-4o-mini",
		GeminiModel:    translation.DefaultGeminiModel,
		TargetLanguage: translation.DefaultTargetLanguage,
	}
}

// DefaultCacheFile returns the translation cache location below the user's
// state directory
func DefaultCacheFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "translation_cache.json"
	}
	return filepath.Join(home, ".local", "state", "markanki", "translation_cache.json")
}
