package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSaver collects committed values and can be told to fail.
type recordingSaver struct {
	mu      sync.Mutex
	commits []string
	err     error
}

func (r *recordingSaver) save(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.commits = append(r.commits, name)
	return nil
}

func (r *recordingSaver) committed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.commits...)
}

func (r *recordingSaver) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func newTestAutoSaver(t *testing.T, saver *recordingSaver, debounce time.Duration) *AutoSaver {
	t.Helper()
	a := NewAutoSaver(saver.save, AutoSaverConfig{Debounce: debounce, InputBuffer: 16}, nil)
	a.Start()
	t.Cleanup(a.Stop)
	return a
}

// waitForCommits polls until the saver has seen at least n commits or the
// deadline passes.
func waitForCommits(t *testing.T, saver *recordingSaver, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(saver.committed()) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected at least %d commits, got %v", n, saver.committed())
}

func TestAutoSaverCommitsOnlyTheFinalValue(t *testing.T) {
	saver := &recordingSaver{}
	a := newTestAutoSaver(t, saver, 50*time.Millisecond)

	// Keystrokes arriving within the quiet period.
	a.Input("M")
	a.Input("Mi")
	a.Input("Mia")

	waitForCommits(t, saver, 1)
	// Give the loop a chance to (incorrectly) commit intermediates.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"Mia"}, saver.committed())
}

func TestAutoSaverTrimsAndDropsBlank(t *testing.T) {
	saver := &recordingSaver{}
	a := newTestAutoSaver(t, saver, 20*time.Millisecond)

	a.Input("   ")
	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, saver.committed(), "blank values must not be committed")

	a.Input("  Mia  ")
	waitForCommits(t, saver, 1)
	assert.Equal(t, []string{"Mia"}, saver.committed())
}

func TestAutoSaverSuppressesRepeatedValue(t *testing.T) {
	saver := &recordingSaver{}
	a := newTestAutoSaver(t, saver, 20*time.Millisecond)

	a.Input("Mia")
	waitForCommits(t, saver, 1)

	a.Input("Mia")
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, []string{"Mia"}, saver.committed(), "unchanged value must not re-commit")

	a.Input("Mia Rose")
	waitForCommits(t, saver, 2)
	assert.Equal(t, []string{"Mia", "Mia Rose"}, saver.committed())
}

func TestAutoSaverTimerResetsOnNewInput(t *testing.T) {
	saver := &recordingSaver{}
	a := newTestAutoSaver(t, saver, 60*time.Millisecond)

	a.Input("M")
	time.Sleep(30 * time.Millisecond)
	a.Input("Mi")
	time.Sleep(30 * time.Millisecond)
	a.Input("Mia")

	// 60 ms have passed since the first value but the timer was reset
	// twice; nothing may be committed yet.
	assert.Empty(t, saver.committed())

	waitForCommits(t, saver, 1)
	assert.Equal(t, []string{"Mia"}, saver.committed())
}

func TestAutoSaverDoesNotRetryFailedCommit(t *testing.T) {
	saver := &recordingSaver{}
	saver.setErr(errors.New("database gone"))
	a := newTestAutoSaver(t, saver, 20*time.Millisecond)

	a.Input("Mia")
	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, saver.committed())
	assert.Equal(t, "", a.LastCommitted(), "failed commit must not update the last committed name")

	// The same value after a failure is attempted again: it never became
	// the last committed name.
	saver.setErr(nil)
	a.Input("Mia")
	waitForCommits(t, saver, 1)
	assert.Equal(t, []string{"Mia"}, saver.committed())
	assert.Equal(t, "Mia", a.LastCommitted())
}

func TestAutoSaverStopDiscardsPendingValue(t *testing.T) {
	saver := &recordingSaver{}
	a := NewAutoSaver(saver.save, AutoSaverConfig{Debounce: time.Hour}, nil)
	a.Start()

	a.Input("Mia")
	a.Stop()
	assert.Empty(t, saver.committed())
}

func TestNewAutoSaverDefaults(t *testing.T) {
	a := NewAutoSaver(func(context.Context, string) error { return nil }, AutoSaverConfig{}, nil)
	require.NotNil(t, a)
	assert.Equal(t, 500*time.Millisecond, a.debounce)
	assert.Equal(t, 64, cap(a.input))

	assert.Panics(t, func() { NewAutoSaver(nil, AutoSaverConfig{}, nil) })
}
