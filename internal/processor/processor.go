package processor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"codeberg.org/snonux/markanki/internal"
	"codeberg.org/snonux/markanki/internal/anki"
	"codeberg.org/snonux/markanki/internal/archive"
	"codeberg.org/snonux/markanki/internal/batch"
	"codeberg.org/snonux/markanki/internal/cli"
	"codeberg.org/snonux/markanki/internal/dedup"
	"codeberg.org/snonux/markanki/internal/extract"
	"codeberg.org/snonux/markanki/internal/translation"
	"codeberg.org/snonux/markanki/internal/vocab"
)

// ErrNotDurable is returned when a translation stayed in memory because the
// cache file could not be written
var ErrNotDurable = errors.New("translations not saved durably")

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
)

// Summary describes one process run
type Summary struct {
	Total    int // marked words seen, duplicates across documents included
	Unique   int
	Cached   int
	New      int
	Batches  []batch.Handle
	Artifact string
}

// Processor handles the main word processing logic
type Processor struct {
	flags  *cli.Flags
	store  *translation.Store
	writer anki.Writer
	out    io.Writer
	errOut io.Writer

	lastCards int
}

// NewProcessor creates a new processor and opens the translation cache
func NewProcessor(flags *cli.Flags, out, errOut io.Writer) (*Processor, error) {
	if flags.BatchSize <= 0 {
		return nil, fmt.Errorf("%w: %d", batch.ErrInvalidCapacity, flags.BatchSize)
	}

	writer, err := anki.NewWriter(flags.Format)
	if err != nil {
		return nil, err
	}

	return &Processor{
		flags:  flags,
		store:  translation.OpenStore(internal.ExpandHome(flags.CacheFile), errOut),
		writer: writer,
		out:    out,
		errOut: errOut,
	}, nil
}

// Store returns the translation cache
func (p *Processor) Store() *translation.Store {
	return p.store
}

// Close flushes the translation cache
func (p *Processor) Close() error {
	return p.store.Close()
}

// Process extracts the marked words of a document or directory and splits
// them into cached words and translation batches. When every word is cached
// the Anki file is written right away.
func (p *Processor) Process(source string) (*Summary, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("failed to access source: %w", err)
	}

	absPath, err := filepath.Abs(source)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source path: %w", err)
	}

	var docs []*extract.Document
	var set batch.Set

	if info.IsDir() {
		set = batch.NewSet(absPath, true)
		fmt.Fprintf(p.out, "[1/5] Extracting marked words from directory: %s\n", source)
		docs, err = p.extractDir(absPath)
		if err != nil {
			return nil, err
		}
	} else {
		set = batch.NewSet(absPath, false)
		fmt.Fprintf(p.out, "[1/5] Extracting marked words: %s\n", source)
		doc, err := extract.ExtractFile(absPath)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(p.out, "  ✓ Extracted %d words (deduplicated)\n", doc.Count())
		if doc.Count() > 0 {
			docs = append(docs, doc)
		}
	}

	if len(docs) == 0 {
		fmt.Fprintln(p.out, "  No marked words found, nothing to do")
		return &Summary{}, nil
	}

	streams := make([][]vocab.Record, 0, len(docs))
	for _, doc := range docs {
		streams = append(streams, doc.Words)
	}
	result := dedup.Classify(dedup.Flatten(streams...), p.store)

	summary := &Summary{
		Total:  result.Total,
		Unique: len(result.Unique),
		Cached: len(result.Cached),
		New:    len(result.Uncached),
	}

	fmt.Fprintf(p.out, "\n[2/5] Checking translation cache\n")
	fmt.Fprintf(p.out, "  ✓ Found %d cached words\n", summary.Cached)
	fmt.Fprintf(p.out, "  ✓ %d new words need translation\n", summary.New)

	if summary.New == 0 {
		fmt.Fprintf(p.out, "\n[3/5] All words are cached, no translation needed\n")
		fmt.Fprintf(p.out, "\n[4/5] Generating Anki file\n")

		artifact, cards, err := p.writeArtifact(set.Key, set.Label, docs)
		if err != nil {
			return summary, err
		}
		summary.Artifact = artifact
		fmt.Fprintf(p.out, "  ✓ Generated: %s (%d cards)\n", artifact, cards)

		fmt.Fprintf(p.out, "\n[5/5] Done!\n")
		p.printSummary(summary)
		return summary, nil
	}

	batches, err := batch.Partition(result.Uncached, p.flags.BatchSize)
	if err != nil {
		return summary, err
	}

	fmt.Fprintf(p.out, "\n[3/5] Writing %d translation %s (at most %d words each)\n",
		len(batches), plural(len(batches), "batch", "batches"), p.flags.BatchSize)

	storage := batch.NewStorage(internal.ExpandHome(p.flags.BatchDir))
	handles, err := storage.WriteSet(set, batches)
	if err != nil {
		return summary, err
	}
	summary.Batches = handles

	for i, h := range handles {
		fmt.Fprintf(p.out, "  Batch %d/%d: %d words -> %s\n", h.Ordinal, len(handles), len(batches[i].Members), h.Path)
	}

	p.printSaveCommands(handles)
	p.printSummary(summary)
	return summary, nil
}

// extractDir extracts a directory and reports empty and unreadable documents
func (p *Processor) extractDir(dir string) ([]*extract.Document, error) {
	res, err := extract.ExtractDir(dir, p.flags.Pattern)
	if err != nil {
		return nil, err
	}

	for _, doc := range res.Documents {
		fmt.Fprintf(p.out, "  ✓ %s: %d words\n", filepath.Base(doc.Path), doc.Count())
	}
	for _, path := range res.Empty {
		fmt.Fprintf(p.out, "  - %s: no marked words, skipped\n", filepath.Base(path))
	}
	for _, failure := range res.Failures {
		p.warnf("failed to extract %s: %v", failure.Path, failure.Err)
	}

	return res.Documents, nil
}

// writeArtifact resolves every document against the cache, one group per
// document, and writes the Anki file for the set
func (p *Processor) writeArtifact(setKey, label string, docs []*extract.Document) (string, int, error) {
	groups := make([]anki.Group, 0, len(docs))
	for _, doc := range docs {
		resolved := dedup.Classify(doc.Words, p.store)
		groups = append(groups, anki.Group{Label: doc.Label, Records: resolved.Unique})
	}

	cards, err := anki.Assemble(groups)
	if err != nil {
		return "", 0, err
	}

	outDir := internal.ExpandHome(p.flags.OutputDir)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	deck := p.flags.DeckName
	if deck == "" {
		deck = label
	}

	dest := filepath.Join(outDir, setKey+p.writer.Ext())
	if err := p.writer.Write(cards, dest, deck); err != nil {
		return "", 0, err
	}
	return dest, len(cards), nil
}

func (p *Processor) printSaveCommands(handles []batch.Handle) {
	fmt.Fprintf(p.out, "\nTranslate each batch file, then save it with:\n")
	for _, h := range handles {
		fmt.Fprintf(p.out, "  markanki save %s %s\n", h.Path, archive.ResultPath(h.Path))
	}
	fmt.Fprintf(p.out, "\nOr let a model translate and save it: markanki translate <batch-file> --save\n")

	fmt.Fprintf(p.out, "\nTranslation format (list every common sense, dictionary style):\n")
	fmt.Fprintln(p.out, `[
  {
    "word": "example",
    "translation": "n. 例子；范例；榜样 v. 作为...的例子",
    "sentence": "This is an example.",
    "sentence_translation": "这是一个例子。"
  }
]`)
	fmt.Fprintf(p.out, "\nThe Anki file is generated once every batch is saved.\n")
}

func (p *Processor) printSummary(s *Summary) {
	fmt.Fprintf(p.out, "\n=== Summary ===\n")
	fmt.Fprintf(p.out, "Total words: %d\n", s.Total)
	fmt.Fprintf(p.out, "Unique: %d\n", s.Unique)
	fmt.Fprintf(p.out, "Cached: %d\n", s.Cached)
	fmt.Fprintf(p.out, "New: %d\n", s.New)
	fmt.Fprintf(p.out, "===============\n")
}

func (p *Processor) warnf(format string, args ...interface{}) {
	warnColor.Fprintf(p.errOut, "Warning: "+format+"\n", args...)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
