package translation

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"codeberg.org/snonux/markanki/internal/vocab"
)

// DefaultGeminiModel is used when no Gemini model is configured
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiTranslator translates batches with a Gemini model
type GeminiTranslator struct {
	model          string
	targetLanguage string
	client         *genai.Client
}

// NewGeminiTranslator creates a new Gemini backed translator
func NewGeminiTranslator(ctx context.Context, apiKey, model, targetLanguage string) (*GeminiTranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key not found")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if targetLanguage == "" {
		targetLanguage = DefaultTargetLanguage
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiTranslator{
		model:          model,
		targetLanguage: targetLanguage,
		client:         client,
	}, nil
}

// TranslateBatch sends all words in one generate request
func (t *GeminiTranslator) TranslateBatch(ctx context.Context, words []vocab.Record) ([]Result, error) {
	if len(words) == 0 {
		return nil, nil
	}

	prompt, err := buildPrompt(words, t.targetLanguage)
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.2),
		ResponseMIMEType: "application/json",
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("no translation returned")
	}

	return parseResponse(text)
}
