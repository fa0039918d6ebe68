package watch

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
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)
	defer d.Stop()
	for range 10 {
		d.Trigger()
	}

	select {
	case <-d.C:
	case <-time.After(time.Second):
		t.Fatal("debounced request never arrived")
	}
	select {
	case <-d.C:
		t.Fatal("burst produced more than one request")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncer_Stop(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)
	d.Trigger()
	d.Stop()
	select {
	case <-d.C:
		t.Fatal("stopped debouncer fired")
	case <-time.After(80 * time.Millisecond):
	}
}

func TestWorker_SingleFlightAndCoalesce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		runs    atomic.Int32
		active  atomic.Int32
		overlap atomic.Bool
		release = make(chan struct{})
	)
	w := &worker{run: func(context.Context) {
		if active.Add(1) > 1 {
			overlap.Store(true)
		}
		if runs.Add(1) == 1 {
			<-release
		}
		active.Add(-1)
	}}
	requests := make(chan struct{}, 1)
	go w.serve(ctx, requests)

	requests <- struct{}{}
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	for range 3 {
		requests <- struct{}{}
		time.Sleep(5 * time.Millisecond)
	}
	close(release)

	require.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), runs.Load(), "requests during a run collapse into one follow-up")
	assert.False(t, overlap.Load())
}

func TestScheduler_ScheduleEvery(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	id, err := s.ScheduleEvery("test", 10*time.Second, func() {})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = s.ScheduleEvery("test", 0, func() {})
	require.Error(t, err)
}

func TestShouldIgnoreEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"markdown write", fsnotify.Event{Name: "info/aarch64-apple-darwin.md", Op: fsnotify.Write}, false},
		{"markdown remove", fsnotify.Event{Name: "info/%2A.md", Op: fsnotify.Remove}, false},
		{"chmod only", fsnotify.Event{Name: "info/a.md", Op: fsnotify.Chmod}, true},
		{"hidden", fsnotify.Event{Name: "info/.a.md", Op: fsnotify.Write}, true},
		{"emacs lock", fsnotify.Event{Name: "info/#a.md#", Op: fsnotify.Create}, true},
		{"backup", fsnotify.Event{Name: "info/a.md~", Op: fsnotify.Create}, true},
		{"swap", fsnotify.Event{Name: "info/a.md.swp", Op: fsnotify.Write}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldIgnoreEvent(tt.ev))
		})
	}
}

func TestRun_RebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var builds atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{
			Dir:      dir,
			Debounce: 20 * time.Millisecond,
			Rebuild: func(context.Context) error {
				builds.Add(1)
				return errors.New("failures are logged, not fatal")
			},
		})
	}()

	require.Eventually(t, func() bool { return builds.Load() == 1 }, 2*time.Second, 10*time.Millisecond, "initial build")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wasm32-wasip1.md"), []byte("---\npattern: wasm32-wasip1\n---\n"), 0o600))
	require.Eventually(t, func() bool { return builds.Load() >= 2 }, 2*time.Second, 10*time.Millisecond, "rebuild after change")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestRun_MissingDir(t *testing.T) {
	err := Run(context.Background(), Options{
		Dir:     filepath.Join(t.TempDir(), "missing"),
		Rebuild: func(context.Context) error { return nil },
	})
	require.Error(t, err)
}
