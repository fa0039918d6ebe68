package watch

import (
	"context"
	"sync"
)

// worker runs one rebuild at a time. A request arriving while a rebuild is
// running is remembered and served once it finishes; further requests in
// the meantime collapse into that one.
type worker struct {
	mu      sync.Mutex
	running bool
	pending bool
	run     func(ctx context.Context)
}

// serve consumes requests until ctx ends or requests is closed.
func (w *worker) serve(ctx context.Context, requests chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-requests:
			if !ok {
				return
			}
			w.mu.Lock()
			if w.running {
				w.pending = true
				w.mu.Unlock()
				continue
			}
			w.running = true
			w.mu.Unlock()

			go w.execute(ctx, requests)
		}
	}
}

func (w *worker) execute(ctx context.Context, requests chan struct{}) {
	w.run(ctx)

	w.mu.Lock()
	w.running = false
	again := w.pending
	w.pending = false
	w.mu.Unlock()

	if again && ctx.Err() == nil {
		select {
		case requests <- struct{}{}:
		default:
		}
	}
}
