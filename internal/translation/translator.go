package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/markanki/internal/vocab"
)

// DefaultTargetLanguage is the language words are translated into
const DefaultTargetLanguage = "Chinese"

// Translator turns a batch of words into translation results
type Translator interface {
	TranslateBatch(ctx context.Context, words []vocab.Record) ([]Result, error)
}

// promptWord is the per-word payload sent to a model
type promptWord struct {
	Word     string `json:"word"`
	Sentence string `json:"sentence"`
}

// buildPrompt asks for a JSON array with one result per word
func buildPrompt(words []vocab.Record, targetLanguage string) (string, error) {
	payload := make([]promptWord, 0, len(words))
	for _, w := range words {
		payload = append(payload, promptWord{Word: w.Word, Sentence: w.Sentence})
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode words: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Translate each English word below into %s, ", targetLanguage)
	b.WriteString("giving the part of speech and the meaning that fits its sentence, ")
	fmt.Fprintf(&b, "and translate the sentence into %s as well.\n", targetLanguage)
	b.WriteString("Respond with only a JSON array of objects with the keys ")
	b.WriteString(`"word", "translation", "sentence" and "sentence_translation". `)
	b.WriteString("Keep word and sentence exactly as given.\n\n")
	b.Write(data)
	return b.String(), nil
}

// OpenAITranslator translates batches with an OpenAI chat model
type OpenAITranslator struct {
	apiKey         string
	model          string
	targetLanguage string
	client         *openai.Client
}

// NewOpenAITranslator creates a new OpenAI backed translator
func NewOpenAITranslator(apiKey, model, targetLanguage string) *OpenAITranslator {
	if model == "" {
		model = openai.GPT4oMini
	}
	if targetLanguage == "" {
		targetLanguage = DefaultTargetLanguage
	}

	return &OpenAITranslator{
		apiKey:         apiKey,
		model:          model,
		targetLanguage: targetLanguage,
		client:         openai.NewClient(apiKey),
	}
}

// TranslateBatch sends all words in one chat completion
func (t *OpenAITranslator) TranslateBatch(ctx context.Context, words []vocab.Record) ([]Result, error) {
	if t.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not found")
	}
	if len(words) == 0 {
		return nil, nil
	}

	prompt, err := buildPrompt(words, t.targetLanguage)
	if err != nil {
		return nil, err
	}

	req := openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a precise bilingual lexicographer. You answer with JSON only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.2,
	}

	resp, err := t.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no translation returned")
	}

	return parseResponse(resp.Choices[0].Message.Content)
}
