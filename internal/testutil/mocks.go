package testutil

import (
	"context"
	"fmt"
	"sync"

	"codeberg.org/snonux/markanki/internal/translation"
	"codeberg.org/snonux/markanki/internal/vocab"
)

// MockTranslator mocks the batch translation service
type MockTranslator struct {
	Translations map[string]string // key -> translation
	Skip         map[string]bool   // keys left out of the response
	Err          error

	mu    sync.Mutex
	Calls [][]string
}

// TranslateBatch mocks translating a batch of words
func (m *MockTranslator) TranslateBatch(ctx context.Context, words []vocab.Record) ([]translation.Result, error) {
	keys := make([]string, 0, len(words))
	for _, w := range words {
		keys = append(keys, w.Key)
	}

	m.mu.Lock()
	m.Calls = append(m.Calls, keys)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	results := make([]translation.Result, 0, len(words))
	for _, w := range words {
		if m.Skip[w.Key] {
			continue
		}

		text, ok := m.Translations[w.Key]
		if !ok {
			// Default mock translation
			text = fmt.Sprintf("mock translation of %s", w.Key)
		}
		results = append(results, translation.Result{
			Word:                w.Word,
			Translation:         text,
			Sentence:            w.Sentence,
			SentenceTranslation: fmt.Sprintf("mock sentence translation of %s", w.Key),
		})
	}
	return results, nil
}
