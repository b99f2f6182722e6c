package translation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"codeberg.org/snonux/markanki/internal/vocab"
)

// Result is one translated word as supplied by the external translation step
type Result struct {
	Word                string `json:"word"`
	Translation         string `json:"translation"`
	Sentence            string `json:"sentence,omitempty"`
	SentenceTranslation string `json:"sentence_translation"`
}

// ReadResults loads a translation result file. The file holds either a JSON
// array of results or a single result object.
func ReadResults(path string) ([]Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file: %w", err)
	}

	results, err := ParseResults(data)
	if err != nil {
		return nil, fmt.Errorf("malformed translation file %s: %w", path, err)
	}
	return results, nil
}

// ParseResults decodes a JSON array of results or a single result object
func ParseResults(data []byte) ([]Result, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	switch data[0] {
	case '[':
		var results []Result
		if err := json.Unmarshal(data, &results); err != nil {
			return nil, err
		}
		return results, nil
	case '{':
		var result Result
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, err
		}
		return []Result{result}, nil
	default:
		return nil, fmt.Errorf("expected a JSON array or object")
	}
}

// parseResponse pulls the JSON array out of an LLM reply, which may wrap it
// in prose or a code fence
func parseResponse(text string) ([]Result, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("response does not contain a JSON array")
	}

	var results []Result
	if err := json.Unmarshal([]byte(text[start:end+1]), &results); err != nil {
		return nil, fmt.Errorf("failed to decode translation response: %w", err)
	}
	return results, nil
}

// WriteResults saves results as an indented JSON array
func WriteResults(path string, results []Result) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode translations: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write translation file: %w", err)
	}
	return nil
}

// Missing returns the keys of words that have no result
func Missing(words []vocab.Record, results []Result) []string {
	have := make(map[string]bool, len(results))
	for _, r := range results {
		have[vocab.Normalize(r.Word)] = true
	}

	var missing []string
	for _, w := range words {
		if !have[w.Key] {
			missing = append(missing, w.Key)
		}
	}
	return missing
}
