package processor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codeberg.org/snonux/markanki/internal/archive"
	"codeberg.org/snonux/markanki/internal/batch"
	"codeberg.org/snonux/markanki/internal/cli"
	"codeberg.org/snonux/markanki/internal/translation"
)

// NewTranslator builds the configured LLM translator behind a circuit breaker
func NewTranslator(ctx context.Context, flags *cli.Flags) (translation.Translator, error) {
	var inner translation.Translator
	var provider string

	switch strings.ToLower(flags.Provider) {
	case "", "openai":
		provider = "openai"
		key := cli.GetOpenAIKey()
		if key == "" {
			return nil, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .markanki.yaml")
		}
		inner = translation.NewOpenAITranslator(key, flags.OpenAIModel, flags.TargetLanguage)
	case "gemini":
		provider = "gemini"
		t, err := translation.NewGeminiTranslator(ctx, cli.GetGeminiKey(), flags.GeminiModel, flags.TargetLanguage)
		if err != nil {
			return nil, err
		}
		inner = t
	default:
		return nil, fmt.Errorf("unknown translation provider %q (use openai or gemini)", flags.Provider)
	}

	return translation.NewBreakerTranslator(provider, inner, 3, 2*time.Second), nil
}

// Translate asks translator for the words of a batch file and writes the
// answer as a translation result file. It returns the path written.
func (p *Processor) Translate(ctx context.Context, batchFile, outPath string, translator translation.Translator) (string, error) {
	file, err := batch.ReadFile(batchFile)
	if err != nil {
		return "", err
	}

	if outPath == "" {
		outPath = archive.ResultPath(batchFile)
	}

	fmt.Fprintf(p.out, "Translating %d words from %s\n", len(file.Words), batchFile)
	if file.BatchInfo != "" {
		fmt.Fprintf(p.out, "  Current batch: %s\n", file.BatchInfo)
	}

	results, err := translator.TranslateBatch(ctx, file.Words)
	if err != nil {
		return "", err
	}

	if missing := translation.Missing(file.Words, results); len(missing) > 0 {
		p.warnf("%d words missing from the response: %s", len(missing), strings.Join(missing, ", "))
	}

	if err := translation.WriteResults(outPath, results); err != nil {
		return "", err
	}

	fmt.Fprintf(p.out, "  ✓ Wrote %d translations to %s\n", len(results), outPath)
	return outPath, nil
}
