package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/indsearch/internal/logging"
)

func TestDebouncer_CollapsesBurst(t *testing.T) {
	// Given: a debouncer with a short window
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	// When: triggering several times in quick succession
	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	// Then: exactly one signal is emitted
	select {
	case <-d.Output():
	case <-time.After(time.Second):
		t.Fatal("no signal after burst")
	}
	select {
	case <-d.Output():
		t.Fatal("second signal for one burst")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	d.Trigger()
	d.Stop()
	d.Stop()
	d.Trigger()

	select {
	case <-d.Output():
		t.Fatal("signal after Stop")
	case <-time.After(80 * time.Millisecond):
	}
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "indicators.json"), nil, DefaultOptions())
	assert.Error(t, err)
}

func TestOptions_WithDefaults(t *testing.T) {
	o := Options{}.WithDefaults()
	assert.Equal(t, 300*time.Millisecond, o.DebounceWindow)
	assert.NotNil(t, o.Logger)
}

func TestRelevant_FiltersOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "indicators.json"), nil, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, w.relevant(fsnotify.Event{Name: w.Path(), Op: fsnotify.Write}))
	assert.True(t, w.relevant(fsnotify.Event{Name: w.Path(), Op: fsnotify.Rename}))
	assert.False(t, w.relevant(fsnotify.Event{Name: w.Path(), Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(w.dir, "other.json"), Op: fsnotify.Write}))
}

func TestRun_ReloadsOnWrite(t *testing.T) {
	// Given: a watched catalog file
	dir := t.TempDir()
	path := filepath.Join(dir, "indicators.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	var reloads atomic.Int32
	w, err := New(path, func(context.Context) error {
		reloads.Add(1)
		return nil
	}, Options{DebounceWindow: 50 * time.Millisecond, Logger: logging.Discard()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	// Give fsnotify time to register the directory.
	time.Sleep(100 * time.Millisecond)

	// When: the file is rewritten several times and a sibling file changes
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`{"A": {}}`), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	// Then: one reload happens for the burst
	assert.Eventually(t, func() bool { return reloads.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), reloads.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRun_ReloadErrorDoesNotStop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "indicators.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	var calls atomic.Int32
	w, err := New(path, func(context.Context) error {
		calls.Add(1)
		return errors.New("malformed")
	}, Options{DebounceWindow: 20 * time.Millisecond, Logger: logging.Discard()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 3*time.Second, 20*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, 3*time.Second, 20*time.Millisecond)
}
