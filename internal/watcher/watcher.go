package watcher

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
	"github.com/nguyentantai21042004/meeting-flow/internal/logger"
	"github.com/nguyentantai21042004/meeting-flow/internal/media"
)

type implWatcher struct {
	inputDir string
	handler  EventHandler
	logger   logger.Logger
	watcher  *fsnotify.Watcher
	settle   time.Duration
	queue    chan string

	mu      sync.Mutex
	pending map[string]bool
	wg      sync.WaitGroup
}

// Start begins monitoring the input directory for new recordings.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "File watcher started. Monitoring: %s", w.inputDir)

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.work(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			// The handler shares ctx, so an in-flight recording is cancelled
			// rather than finished.
			w.logger.Info(ctx, "Cancelling the current recording...")
			w.wg.Wait()
			<-done
			w.logger.Info(ctx, "File watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !media.IsMedia(event.Name) {
				w.logger.Debug(ctx, "Ignoring unsupported file: %s", event.Name)
				continue
			}
			if !w.claim(event.Name) {
				continue
			}

			w.logger.Info(ctx, "New recording detected: %s", event.Name)
			w.wg.Add(1)
			go func(path string) {
				defer w.wg.Done()
				if err := waitStable(ctx, path, w.settle); err != nil {
					w.logger.Warn(ctx, "Dropping %s: %v", path, err)
					w.release(path)
					return
				}
				select {
				case w.queue <- path:
				case <-ctx.Done():
					w.release(path)
				}
			}(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// work is the single consumer of the queue.
func (w *implWatcher) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-w.queue:
			if err := w.handler(ctx, path); err != nil {
				w.logger.Error(ctx, "Failed to process %s: %v", path, err)
			}
			w.release(path)
		}
	}
}

// claim marks path as in flight. A second Create for the same path while it
// is queued or running is ignored.
func (w *implWatcher) claim(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending[path] {
		return false
	}
	w.pending[path] = true
	return true
}

func (w *implWatcher) release(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.pending, path)
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

// waitStable polls path until its size is unchanged for settle.
func waitStable(ctx context.Context, path string, settle time.Duration) error {
	poll := settle / 4
	if poll < 10*time.Millisecond {
		poll = 10 * time.Millisecond
	}

	var (
		lastSize int64 = -1
		since    time.Time
	)
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() != lastSize {
			lastSize = info.Size()
			since = time.Now()
		} else if time.Since(since) >= settle {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
