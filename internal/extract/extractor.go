package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"codeberg.org/snonux/markanki/internal/vocab"
)

// DefaultPattern selects the documents ExtractDir reads
const DefaultPattern = "*.md"

// contextWindow bounds how far (in characters) a sentence may extend on
// either side of a marked word
const contextWindow = 500

var (
	markPattern = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	wordPattern = regexp.MustCompile(`^[a-zA-Z'-]+$`)
)

// Document is the extraction result for one source file
type Document struct {
	Label string // file name without extension
	Path  string // absolute path of the source file
	Words []vocab.Record
}

// Count returns the number of distinct words in the document
func (d *Document) Count() int {
	return len(d.Words)
}

// ExtractFile reads a markdown file and extracts its marked words
func ExtractFile(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	label := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &Document{
		Label: label,
		Path:  absPath,
		Words: ExtractText(string(content), label),
	}, nil
}

// ExtractText returns the distinct marked words of content in first-occurrence
// order. Spans shorter than two characters or containing anything but ASCII
// letters, apostrophes and hyphens are ignored.
func ExtractText(content, label string) []vocab.Record {
	text := []rune(content)
	matches := markPattern.FindAllStringSubmatchIndex(content, -1)

	// Regexp offsets are bytes; sentence scanning works on runes.
	byteOff, runeOff := 0, 0
	toRune := func(b int) int {
		runeOff += utf8.RuneCountInString(content[byteOff:b])
		byteOff = b
		return runeOff
	}

	seen := make(map[string]bool)
	var words []vocab.Record
	for _, m := range matches {
		start, end := toRune(m[0]), toRune(m[1])

		surface := strings.TrimSpace(content[m[2]:m[3]])
		key := vocab.Normalize(surface)
		if seen[key] || utf8.RuneCountInString(key) < 2 || !wordPattern.MatchString(key) {
			continue
		}
		seen[key] = true

		words = append(words, vocab.NewRecord(surface, sentenceAround(text, start, end), label))
	}

	return words
}

// sentenceAround returns the cleaned sentence enclosing text[start:end]
func sentenceAround(text []rune, start, end int) string {
	limit := start - contextWindow
	if limit < 0 {
		limit = 0
	}

	from := limit
	for i := start - 1; i >= limit; i-- {
		if isTerminator(text[i]) || (i > 0 && text[i] == '\n' && text[i-1] == '\n') {
			from = i + 1
			break
		}
	}
	for from < start && isBlank(text[from]) {
		from++
	}

	stop := end + contextWindow
	if stop > len(text) {
		stop = len(text)
	}

	to := stop
	for i := end; i < stop; i++ {
		if isTerminator(text[i]) {
			to = i + 1
			break
		}
		if i < len(text)-1 && text[i] == '\n' && text[i+1] == '\n' {
			to = i
			break
		}
	}

	sentence := markPattern.ReplaceAllString(string(text[from:to]), "$1")
	return strings.Join(strings.Fields(sentence), " ")
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n'
}

// FileError records a document that could not be extracted
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// DirResult is the outcome of extracting a whole directory
type DirResult struct {
	Documents []*Document // documents with at least one word, sorted by path
	Empty     []string    // documents without marked words
	Failures  []FileError // documents that could not be read
}

// WordCount returns the number of words summed over all documents
func (r *DirResult) WordCount() int {
	total := 0
	for _, doc := range r.Documents {
		total += doc.Count()
	}
	return total
}

// ExtractDir extracts every file in dir whose name matches pattern.
// Documents are processed in sorted path order; a failing document is
// recorded in Failures and does not stop the others.
func ExtractDir(dir, pattern string) (*DirResult, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(pattern, entry.Name()); ok {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	result := &DirResult{}
	for _, path := range paths {
		doc, err := ExtractFile(path)
		if err != nil {
			result.Failures = append(result.Failures, FileError{Path: path, Err: err})
			continue
		}
		if doc.Count() == 0 {
			result.Empty = append(result.Empty, path)
			continue
		}
		result.Documents = append(result.Documents, doc)
	}

	return result, nil
}
