package batch

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/snonux/markanki/internal/vocab"
)

const (
	singleSuffix = "_to_translate"
	batchInfix   = "_to_translate_batch_"
	fileExt      = ".json"
)

// File is the on-disk form of one batch
type File struct {
	DeckName  string         `json:"deck_name,omitempty"`
	FilePath  string         `json:"file_path,omitempty"`
	Directory string         `json:"directory,omitempty"`
	BatchInfo string         `json:"batch_info,omitempty"`
	Words     []vocab.Record `json:"words"`
}

// Source returns the document or directory the batch was extracted from
func (f *File) Source() (path string, directory bool) {
	if f.Directory != "" {
		return f.Directory, true
	}
	return f.FilePath, false
}

// Label returns the deck name recorded in the header, falling back to the
// source's base name
func (f *File) Label() string {
	if f.DeckName != "" {
		return f.DeckName
	}
	path, _ := f.Source()
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

// Total returns the set size recorded in the header. Files without
// batch_info belong to a single-batch set.
func (f *File) Total() int {
	if _, total, ok := ParseBatchInfo(f.BatchInfo); ok {
		return total
	}
	return 1
}

// FileName returns the batch file name for a batch of a set
func FileName(setKey string, ordinal, total int) string {
	if total <= 1 {
		return setKey + singleSuffix + fileExt
	}
	return fmt.Sprintf("%s%s%d%s", setKey, batchInfix, ordinal, fileExt)
}

// ParseFileName reverses FileName
func ParseFileName(name string) (setKey string, ordinal int, ok bool) {
	stem, found := strings.CutSuffix(name, fileExt)
	if !found {
		return "", 0, false
	}

	if key, found := strings.CutSuffix(stem, singleSuffix); found && key != "" {
		return key, 1, true
	}

	i := strings.LastIndex(stem, batchInfix)
	if i <= 0 {
		return "", 0, false
	}

	n, err := strconv.Atoi(stem[i+len(batchInfix):])
	if err != nil || n < 1 {
		return "", 0, false
	}
	return stem[:i], n, true
}

// FormatBatchInfo renders the batch_info header value
func FormatBatchInfo(ordinal, total int) string {
	return fmt.Sprintf("Batch %d/%d", ordinal, total)
}

// ParseBatchInfo parses a "Batch <ordinal>/<total>" header value
func ParseBatchInfo(info string) (ordinal, total int, ok bool) {
	rest, found := strings.CutPrefix(strings.TrimSpace(info), "Batch ")
	if !found {
		return 0, 0, false
	}

	a, b, found := strings.Cut(rest, "/")
	if !found {
		return 0, 0, false
	}

	ordinal, err1 := strconv.Atoi(strings.TrimSpace(a))
	total, err2 := strconv.Atoi(strings.TrimSpace(b))
	if err1 != nil || err2 != nil || ordinal < 1 || total < ordinal {
		return 0, 0, false
	}
	return ordinal, total, true
}
