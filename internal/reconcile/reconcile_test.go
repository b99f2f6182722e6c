package reconcile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/markanki/internal/batch"
	"codeberg.org/snonux/markanki/internal/translation"
	"codeberg.org/snonux/markanki/internal/vocab"
)

type fixture struct {
	storage *batch.Storage
	store   *translation.Store
	calls   int
}

func newFixture(t *testing.T, capacity int, words ...string) *fixture {
	t.Helper()
	dir := t.TempDir()

	f := &fixture{
		storage: batch.NewStorage(filepath.Join(dir, "batches")),
		store:   translation.OpenStore(filepath.Join(dir, "cache.json"), nil),
	}

	records := make([]vocab.Record, 0, len(words))
	for _, w := range words {
		records = append(records, vocab.NewRecord(w, w+" here.", "ch1"))
	}
	batches, err := batch.Partition(records, capacity)
	require.NoError(t, err)
	_, err = f.storage.WriteSet(batch.NewSet("/notes/ch1.md", false), batches)
	require.NoError(t, err)
	return f
}

func (f *fixture) reconciler() *Reconciler {
	return New(f.storage, f.store, func(setKey string, header *batch.File) (string, error) {
		f.calls++
		return filepath.Join("/out", setKey+".txt"), nil
	})
}

func TestReconcile_Monotonic(t *testing.T) {
	f := newFixture(t, 1, "alpha", "beta")
	r := f.reconciler()

	outcome, err := r.Reconcile("ch1")
	require.NoError(t, err)
	assert.Equal(t, AwaitingTranslation, outcome.State)
	assert.Equal(t, []int{1, 2}, outcome.Pending)
	assert.Equal(t, 2, outcome.Total)

	require.True(t, f.store.Add("alpha", "n. 阿尔法", "", "").OK())

	outcome, err = r.Reconcile("ch1")
	require.NoError(t, err)
	assert.Equal(t, PartiallyResolved, outcome.State)
	assert.Equal(t, []int{1}, outcome.Resolved)
	assert.Equal(t, []int{2}, outcome.Pending)
	assert.Equal(t, "1 batch remaining: 2", outcome.Report())
	assert.Empty(t, outcome.Artifact)
	assert.Zero(t, f.calls)

	require.True(t, f.store.Add("beta", "n. 贝塔", "", "").OK())

	for i := 0; i < 2; i++ {
		outcome, err = r.Reconcile("ch1")
		require.NoError(t, err)
		assert.Equal(t, Complete, outcome.State)
		assert.Empty(t, outcome.Pending)
		assert.Equal(t, "/out/ch1.txt", outcome.Artifact)
	}
	assert.Equal(t, 2, f.calls, "every call on a complete set assembles again")
}

func TestReconcile_SingleBatchSet(t *testing.T) {
	f := newFixture(t, 30, "alpha", "beta")
	r := f.reconciler()

	outcome, err := r.Reconcile("ch1")
	require.NoError(t, err)
	assert.Equal(t, AwaitingTranslation, outcome.State)
	assert.Equal(t, 1, outcome.Total)
	assert.Equal(t, "1 batch remaining: 1", outcome.Report())

	f.store.Add("alpha", "a", "", "")
	f.store.Add("beta", "b", "", "")

	outcome, err = r.Reconcile("ch1")
	require.NoError(t, err)
	assert.Equal(t, Complete, outcome.State)
	assert.Equal(t, "All 1 batch translated", outcome.Report())
	assert.Equal(t, 1, f.calls)
}

func TestReconcile_MissingSiblingIsPending(t *testing.T) {
	f := newFixture(t, 1, "alpha", "beta", "gamma")
	for _, w := range []string{"alpha", "beta", "gamma"} {
		f.store.Add(w, "x", "", "")
	}
	require.NoError(t, os.Remove(filepath.Join(f.storage.Dir(), "ch1_to_translate_batch_3.json")))

	outcome, err := f.reconciler().Reconcile("ch1")
	require.NoError(t, err)
	assert.Equal(t, PartiallyResolved, outcome.State)
	assert.Equal(t, []int{3}, outcome.Missing)
	assert.Equal(t, []int{3}, outcome.Pending)
	assert.Equal(t, 3, outcome.Total)
	assert.Zero(t, f.calls)
}

func TestReconcile_NoSiblings(t *testing.T) {
	f := newFixture(t, 1, "alpha")

	_, err := f.reconciler().Reconcile("ch2")
	assert.True(t, errors.Is(err, batch.ErrNoSiblings))
}

func TestReconcile_AssembleError(t *testing.T) {
	f := newFixture(t, 1, "alpha")
	f.store.Add("alpha", "x", "", "")

	r := New(f.storage, f.store, func(string, *batch.File) (string, error) {
		return "", errors.New("disk full")
	})

	outcome, err := r.Reconcile("ch1")
	require.Error(t, err)
	assert.Equal(t, Complete, outcome.State)
}

func TestEvaluate_ReturnsHeader(t *testing.T) {
	f := newFixture(t, 1, "alpha", "beta")

	_, header, err := f.reconciler().Evaluate("ch1")
	require.NoError(t, err)
	require.NotNil(t, header)

	path, dir := header.Source()
	assert.Equal(t, "/notes/ch1.md", path)
	assert.False(t, dir)
	assert.Zero(t, f.calls)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "complete", Complete.String())
	assert.Equal(t, "partially resolved", PartiallyResolved.String())
	assert.Equal(t, "awaiting translation", AwaitingTranslation.String())
}
