// Package reconcile decides whether a batch set is fully translated and, once
// it is, triggers assembly of the final artifact.
//
// Nothing here is persisted. The state of a set is recomputed on every call
// from the batch files on disk and the translation store, so it can only move
// forward as translations land.
package reconcile

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"codeberg.org/snonux/markanki/internal/batch"
)

// State of a batch set
type State int

const (
	AwaitingTranslation State = iota
	PartiallyResolved
	Complete
)

func (s State) String() string {
	switch s {
	case AwaitingTranslation:
		return "awaiting translation"
	case PartiallyResolved:
		return "partially resolved"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// Lookup reports whether the store holds a translation for a word
type Lookup interface {
	Has(word string) bool
}

// AssembleFunc builds the artifact for a complete set from the source named in
// the batch header and returns the artifact path
type AssembleFunc func(setKey string, header *batch.File) (string, error)

// Outcome is the result of one reconciliation
type Outcome struct {
	SetKey   string
	State    State
	Total    int
	Resolved []int
	Pending  []int // includes ordinals whose batch file is missing
	Missing  []int
	Artifact string
}

// Report renders the pending batches, e.g. "2 batches remaining: 2, 3"
func (o Outcome) Report() string {
	if len(o.Pending) == 0 {
		return fmt.Sprintf("All %d %s translated", o.Total, plural(o.Total))
	}

	ords := make([]string, 0, len(o.Pending))
	for _, n := range o.Pending {
		ords = append(ords, strconv.Itoa(n))
	}
	return fmt.Sprintf("%d %s remaining: %s", len(o.Pending), plural(len(o.Pending)), strings.Join(ords, ", "))
}

func plural(n int) string {
	if n == 1 {
		return "batch"
	}
	return "batches"
}

// Reconciler evaluates batch sets against the translation store
type Reconciler struct {
	finder   batch.SiblingFinder
	store    Lookup
	assemble AssembleFunc
}

// New creates a reconciler. assemble may be nil when only the state is needed.
func New(finder batch.SiblingFinder, store Lookup, assemble AssembleFunc) *Reconciler {
	return &Reconciler{
		finder:   finder,
		store:    store,
		assemble: assemble,
	}
}

// Evaluate computes the state of a set without assembling anything. It also
// returns the header of the first sibling, which names the source.
func (r *Reconciler) Evaluate(setKey string) (Outcome, *batch.File, error) {
	outcome := Outcome{SetKey: setKey}

	handles, err := r.finder.FindSiblings(setKey)
	if err != nil {
		return outcome, nil, err
	}

	var header *batch.File
	found := make(map[int]bool, len(handles))

	for _, h := range handles {
		file, err := r.finder.Load(h)
		if err != nil {
			return outcome, nil, err
		}
		if header == nil {
			header = file
		}
		if t := file.Total(); t > outcome.Total {
			outcome.Total = t
		}
		found[h.Ordinal] = true

		if r.resolved(file) {
			outcome.Resolved = append(outcome.Resolved, h.Ordinal)
		} else {
			outcome.Pending = append(outcome.Pending, h.Ordinal)
		}
	}

	if len(handles) > outcome.Total {
		outcome.Total = len(handles)
	}
	for n := 1; n <= outcome.Total; n++ {
		if !found[n] {
			outcome.Missing = append(outcome.Missing, n)
			outcome.Pending = append(outcome.Pending, n)
		}
	}
	sort.Ints(outcome.Pending)

	switch {
	case len(outcome.Pending) == 0:
		outcome.State = Complete
	case len(outcome.Resolved) == 0:
		outcome.State = AwaitingTranslation
	default:
		outcome.State = PartiallyResolved
	}

	return outcome, header, nil
}

// Reconcile evaluates a set and assembles the artifact when it is complete.
// Calling it again on a complete set assembles the same artifact again.
func (r *Reconciler) Reconcile(setKey string) (Outcome, error) {
	outcome, header, err := r.Evaluate(setKey)
	if err != nil {
		return outcome, err
	}
	if outcome.State != Complete || r.assemble == nil {
		return outcome, nil
	}

	artifact, err := r.assemble(setKey, header)
	if err != nil {
		return outcome, fmt.Errorf("failed to assemble %s: %w", setKey, err)
	}
	outcome.Artifact = artifact
	return outcome, nil
}

func (r *Reconciler) resolved(file *batch.File) bool {
	for _, w := range file.Words {
		if !r.store.Has(w.Key) {
			return false
		}
	}
	return true
}
