// Package watch regenerates target documentation when info files change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/targetdocs/internal/logfields"
)

// DefaultDebounce is the quiet period after the last change before a rebuild.
const DefaultDebounce = 300 * time.Millisecond

// Options configures Run.
type Options struct {
	// Dir is the info directory to watch. Subdirectories are not watched.
	Dir      string
	Debounce time.Duration
	// RefreshInterval, when positive, forces a rebuild on a fixed period.
	RefreshInterval time.Duration
	// Rebuild is called for the initial build and after every change. Its
	// error is logged; watching continues.
	Rebuild func(ctx context.Context) error
}

// Run builds once, then rebuilds on change until ctx is canceled.
func Run(ctx context.Context, opts Options) error {
	if opts.Rebuild == nil {
		return fmt.Errorf("watch: no rebuild function")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fw.Close() }()
	if err := fw.Add(opts.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", opts.Dir, err)
	}

	deb := newDebouncer(opts.Debounce)
	defer deb.Stop()

	w := &worker{run: func(ctx context.Context) { rebuild(ctx, opts.Rebuild) }}
	go w.serve(ctx, deb.C)

	if opts.RefreshInterval > 0 {
		sched, err := NewScheduler()
		if err != nil {
			return err
		}
		if _, err := sched.ScheduleEvery("targetdocs-refresh", opts.RefreshInterval, func() {
			slog.Info("Scheduled refresh")
			deb.Now()
		}); err != nil {
			return err
		}
		sched.Start()
		defer func() { _ = sched.Stop() }()
	}

	slog.Info("Watching target info files", logfields.Path(opts.Dir), "debounce", opts.Debounce.String())
	deb.Now()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopped watching")
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if shouldIgnoreEvent(ev) {
				continue
			}
			slog.Debug("File change detected", logfields.Path(ev.Name), "op", ev.Op.String())
			deb.Trigger()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func rebuild(ctx context.Context, fn func(context.Context) error) {
	start := time.Now()
	if err := fn(ctx); err != nil {
		slog.Warn("Rebuild failed", logfields.Error(err))
		return
	}
	slog.Debug("Rebuild finished", logfields.DurationMS(float64(time.Since(start).Milliseconds())))
}

// shouldIgnoreEvent drops events that cannot change the output: anything
// that is not a markdown file, hidden files and editor temp files, and
// attribute-only changes.
func shouldIgnoreEvent(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return true
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "#") || strings.HasSuffix(base, "~") {
		return true
	}
	return !strings.HasSuffix(base, ".md")
}
