package anki

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTSVWriter_Write(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "ch1.txt")

	cards := []Card{
		{Word: "alpha", Translation: "n. 阿尔法", Sentence: "Alpha here.", SentenceTranslation: "阿尔法在这里。", Tag: "ch1"},
		{Word: "beta", Translation: "n. 贝塔", Tag: "ch1"},
	}

	if err := (&TSVWriter{}).Write(cards, dest, "ch1"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	content, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}

	expected := "#separator:tab\n" +
		"#deck:ch1\n" +
		"#columns:word\ttranslation\tsentence\tsentence_translation\ttags\n" +
		"alpha\tn. 阿尔法\tAlpha here.\t阿尔法在这里。\tch1\n" +
		"beta\tn. 贝塔\t\t\tch1\n"

	if string(content) != expected {
		t.Errorf("Unexpected TSV content:\n%q\nwant:\n%q", string(content), expected)
	}
}

func TestTSVWriter_EmptyDeck(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "empty.txt")

	if err := (&TSVWriter{}).Write(nil, dest, "empty"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	content, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}

	if len(content) == 0 {
		t.Error("Expected header lines in empty deck")
	}
}

func TestTSVWriter_BadDestination(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "missing", "out.txt")

	if err := (&TSVWriter{}).Write(nil, dest, "deck"); err == nil {
		t.Error("Expected error for missing directory")
	}
}
