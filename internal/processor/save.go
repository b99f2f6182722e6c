package processor

import (
	"fmt"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/markanki/internal/batch"
	"codeberg.org/snonux/markanki/internal/extract"
	"codeberg.org/snonux/markanki/internal/reconcile"
	"codeberg.org/snonux/markanki/internal/translation"
	"codeberg.org/snonux/markanki/internal/vocab"
)

// SaveAndReconcile stores the translations of one batch in the cache and
// then checks whether the whole set is translated
func (p *Processor) SaveAndReconcile(batchFile, translationFile string) (reconcile.Outcome, error) {
	results, err := translation.ReadResults(translationFile)
	if err != nil {
		return reconcile.Outcome{}, err
	}
	return p.SaveResults(batchFile, results)
}

// SaveResults stores already decoded translations for a batch file and
// reconciles its set. Entries without word or translation are reported and
// skipped. If any cache write fails the set is still reconciled and
// ErrNotDurable is returned afterwards.
func (p *Processor) SaveResults(batchFile string, results []translation.Result) (reconcile.Outcome, error) {
	handle, err := batch.HandleFor(batchFile)
	if err != nil {
		return reconcile.Outcome{}, err
	}

	file, err := batch.ReadFile(batchFile)
	if err != nil {
		return reconcile.Outcome{SetKey: handle.SetKey}, err
	}

	sentences := make(map[string]string, len(file.Words))
	for _, w := range file.Words {
		sentences[w.Key] = w.Sentence
	}

	fmt.Fprintf(p.out, "\n[4/5] Saving translations to cache\n")

	var saved, failed int
	for _, r := range results {
		key := vocab.Normalize(r.Word)
		if key == "" || strings.TrimSpace(r.Translation) == "" {
			p.warnf("skipping entry %q without word or translation", r.Word)
			continue
		}

		sentence := r.Sentence
		if sentence == "" {
			sentence = sentences[key]
		}

		res := p.store.Add(r.Word, r.Translation, sentence, r.SentenceTranslation)
		if !res.OK() {
			failed++
			errColor.Fprintf(p.errOut, "  ✗ %s: %v\n", r.Word, res.Err)
			continue
		}
		saved++
	}

	fmt.Fprintf(p.out, "  ✓ Saved %d translations to cache\n", saved)
	if file.BatchInfo != "" {
		fmt.Fprintf(p.out, "  Current batch: %s\n", file.BatchInfo)
	}

	outcome, err := p.reconcile(handle)
	if err != nil {
		return outcome, err
	}

	if failed > 0 {
		return outcome, fmt.Errorf("%w: %d of %d translations are only in memory (cache file %s)",
			ErrNotDurable, failed, saved+failed, p.store.Path())
	}
	return outcome, nil
}

// Status re-evaluates the set a batch file belongs to without saving
// anything. A complete set gets its Anki file (re)generated.
func (p *Processor) Status(batchFile string) (reconcile.Outcome, error) {
	handle, err := batch.HandleFor(batchFile)
	if err != nil {
		return reconcile.Outcome{}, err
	}

	fmt.Fprintf(p.out, "Checking batch set %s\n", handle.SetKey)
	return p.reconcile(handle)
}

// reconcile checks the siblings of a batch next to the batch file itself
func (p *Processor) reconcile(handle batch.Handle) (reconcile.Outcome, error) {
	storage := batch.NewStorage(filepath.Dir(handle.Path))
	r := reconcile.New(storage, p.store, p.assembleFromHeader)

	outcome, err := r.Reconcile(handle.SetKey)
	if err != nil {
		return outcome, err
	}

	fmt.Fprintf(p.out, "\n  Found %d %s for %s\n", outcome.Total, plural(outcome.Total, "batch", "batches"), outcome.SetKey)

	if outcome.State != reconcile.Complete {
		warnColor.Fprintf(p.out, "\n  ⚠ %s\n", outcome.Report())
		if len(outcome.Missing) > 0 {
			warnColor.Fprintf(p.out, "  Batch files missing for: %v\n", outcome.Missing)
		}
		fmt.Fprintln(p.out, "  Continue translating the remaining batches, then run their save commands")
		return outcome, nil
	}

	okColor.Fprintf(p.out, "\n  ✓ %s\n", outcome.Report())
	fmt.Fprintf(p.out, "\n[5/5] Generating final Anki file\n")
	fmt.Fprintf(p.out, "  ✓ Generated: %s (%d cards)\n", outcome.Artifact, p.lastCards)
	fmt.Fprintf(p.out, "\nDone! All batches merged.\n")
	fmt.Fprintf(p.out, "Batch files are still in %s; tidy up with: markanki archive %s --batch-dir %s\n",
		storage.Dir(), outcome.SetKey, storage.Dir())
	return outcome, nil
}

// assembleFromHeader re-extracts the source named in a batch header and
// writes the Anki file from the documents and the cache
func (p *Processor) assembleFromHeader(setKey string, header *batch.File) (string, error) {
	source, directory := header.Source()
	if source == "" {
		return "", fmt.Errorf("batch header names no source document")
	}

	var docs []*extract.Document
	if directory {
		var err error
		docs, err = p.extractDir(source)
		if err != nil {
			return "", err
		}
	} else {
		doc, err := extract.ExtractFile(source)
		if err != nil {
			return "", err
		}
		docs = append(docs, doc)
	}

	artifact, cards, err := p.writeArtifact(setKey, header.Label(), docs)
	if err != nil {
		return "", err
	}
	p.lastCards = cards
	return artifact, nil
}
